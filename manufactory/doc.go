// Package manufactory is a reflection-based dependency-injection engine.
//
// Producing functions are registered in a CookBook. A function's result type
// is what it produces and its parameters are its dependencies:
//
//	func newAudioPlayer(focus *FocusManager) (*AudioPlayer, error)
//
// Each registration carries a Lifecycle that decides how produced values are
// cached:
//
//   - unique: never cached
//   - primary, required: produced while the manufactory is built (primary
//     first), then kept
//   - retained: produced on first request, then kept
//   - unloadable: produced on first request, reused while referenced elsewhere
//   - instance: a pre-built value
//
// Modules seal their CookBooks into Components that declare what they export
// and import. NewComponent and Create validate those declarations, the
// absence of cycles and the presence of every required dependency once, at
// startup, before anything is produced. A Manufactory then serves typed
// requests:
//
//	acc := manufactory.NewComponentAccumulator().
//	    AddRetainedFactory(newFocusManager).
//	    AddUnloadableFactory(newAudioPlayer)
//	c, err := manufactory.NewComponent(acc,
//	    manufactory.Export(typeindex.Of[*AudioPlayer]()))
//	if err != nil {
//	    return err
//	}
//	m, err := manufactory.Create(c)
//	if err != nil {
//	    return err
//	}
//	player, err := manufactory.TryGet[*AudioPlayer](m)
//
// Runtime failures never panic: a producer that fails, returns nil or panics
// yields a *ProductionError, and every dependant of it fails the same way
// without being called.
package manufactory
