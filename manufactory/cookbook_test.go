package manufactory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/manufactory/manufactory"
	"github.com/sghaida/manufactory/typeindex"
)

//
// -----------------------------------------------------------------------------
// Registration
// -----------------------------------------------------------------------------

// TestCookBook_RegistersInOrder verifies types, lifecycles and dependencies are recorded.
func TestCookBook_RegistersInOrder(t *testing.T) {
	t.Parallel()

	cb := manufactory.NewCookBook().
		AddRetainedFactory(newFocusManager).
		AddUnloadableFactory(newAudioPlayer).
		AddRequiredFactory(newAlerts).
		AddInstance(&MetricSink{name: "sink"})

	require.True(t, cb.IsValid())
	assert.Equal(t, []typeindex.Index{
		typeindex.Of[*FocusManager](),
		typeindex.Of[*AudioPlayer](),
		typeindex.Of[*Alerts](),
		typeindex.Of[*MetricSink](),
	}, cb.Types())

	lc, ok := cb.Lifecycle(typeindex.Of[*AudioPlayer]())
	require.True(t, ok)
	assert.Equal(t, manufactory.LifecycleUnloadable, lc)

	lc, ok = cb.Lifecycle(typeindex.Of[*MetricSink]())
	require.True(t, ok)
	assert.Equal(t, manufactory.LifecycleInstance, lc)

	_, ok = cb.Lifecycle(typeindex.Of[string]())
	assert.False(t, ok)

	assert.Equal(t, []manufactory.Dependency{
		{Type: typeindex.Of[*AudioPlayer]()},
		{Type: typeindex.Of[*MetricSink](), Optional: true},
	}, cb.Dependencies(typeindex.Of[*Alerts]()))
	assert.Nil(t, cb.Dependencies(typeindex.Of[string]()))
}

// TestAddInstanceOf_InterfaceType verifies instances can be registered under an interface.
func TestAddInstanceOf_InterfaceType(t *testing.T) {
	t.Parallel()

	cb := manufactory.AddInstanceOf[InterfaceAB](manufactory.NewCookBook(), newAB())

	assert.True(t, cb.Has(typeindex.Of[InterfaceAB]()))
	assert.False(t, cb.Has(typeindex.Of[*ab]()))
}

// TestCookBook_InvalidIsSticky verifies the first error wins and later registrations are ignored.
func TestCookBook_InvalidIsSticky(t *testing.T) {
	t.Parallel()

	cb := manufactory.NewCookBook().
		AddRetainedFactory(newAB).
		AddRetainedFactory(newOtherAB).
		AddUniqueFactory(newFocusManager).
		AddUniqueFactory("not a function")

	require.False(t, cb.IsValid())
	assert.False(t, cb.CheckCompleteness())

	var conflict *manufactory.ConflictError
	require.ErrorAs(t, cb.Err(), &conflict)
	assert.Equal(t, typeindex.Of[InterfaceAB](), conflict.Type)
	assert.Equal(t, manufactory.KindFactory, conflict.Existing)
	assert.ErrorIs(t, cb.Err(), manufactory.ErrInvalidCookBook)

	assert.False(t, cb.Has(typeindex.Of[*FocusManager]()), "registrations after invalidation are ignored")
}

// TestCookBook_RegistrationErrors verifies malformed registrations invalidate the CookBook.
func TestCookBook_RegistrationErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		build  func(cb *manufactory.CookBook)
		wantIs error
	}{
		{
			name:   "nil factory",
			build:  func(cb *manufactory.CookBook) { cb.AddUniqueFactory(nil) },
			wantIs: manufactory.ErrNilProducer,
		},
		{
			name:   "nil instance",
			build:  func(cb *manufactory.CookBook) { cb.AddInstance((*AudioPlayer)(nil)) },
			wantIs: manufactory.ErrNilProducer,
		},
		{
			name:   "bad signature",
			build:  func(cb *manufactory.CookBook) { cb.AddRetainedFactory(func() {}) },
			wantIs: manufactory.ErrInvalidCookBook,
		},
		{
			name: "producer with instance lifecycle",
			build: func(cb *manufactory.CookBook) {
				cb.AddProducer(typeindex.Named("x"), manufactory.LifecycleInstance, nil,
					func([]any) (any, error) { return 1, nil })
			},
			wantIs: manufactory.ErrInvalidCookBook,
		},
		{
			name: "instance conflicts with factory",
			build: func(cb *manufactory.CookBook) {
				cb.AddRetainedFactory(newFocusManager).AddInstance(&FocusManager{})
			},
			wantIs: manufactory.ErrInvalidCookBook,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cb := manufactory.NewCookBook()
			tc.build(cb)
			assert.False(t, cb.IsValid())
			assert.ErrorIs(t, cb.Err(), tc.wantIs)
		})
	}
}

//
// -----------------------------------------------------------------------------
// AddCookBook
// -----------------------------------------------------------------------------

// TestAddCookBook_Conflicts verifies merges fail only for non-equivalent recipes.
func TestAddCookBook_Conflicts(t *testing.T) {
	t.Parallel()

	shared := &MetricSink{name: "shared"}
	closure := func() *FocusManager { return &FocusManager{} }

	cases := []struct {
		name      string
		a, b      func() *manufactory.CookBook
		wantValid bool
	}{
		{
			name:      "same factory",
			a:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddRetainedFactory(newAB) },
			b:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddRetainedFactory(newAB) },
			wantValid: true,
		},
		{
			name:      "different factories",
			a:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddRetainedFactory(newAB) },
			b:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddRetainedFactory(newOtherAB) },
			wantValid: false,
		},
		{
			name:      "same factory, different lifecycle",
			a:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddRetainedFactory(newAB) },
			b:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddUniqueFactory(newAB) },
			wantValid: false,
		},
		{
			name:      "same instance",
			a:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddInstance(shared) },
			b:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddInstance(shared) },
			wantValid: true,
		},
		{
			name:      "different instances",
			a:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddInstance(shared) },
			b:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddInstance(&MetricSink{}) },
			wantValid: false,
		},
		{
			name:      "closure registered separately",
			a:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddRetainedFactory(closure) },
			b:         func() *manufactory.CookBook { return manufactory.NewCookBook().AddRetainedFactory(closure) },
			wantValid: false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			merged := tc.a().AddCookBook(tc.b())
			assert.Equal(t, tc.wantValid, merged.IsValid())
			if !tc.wantValid {
				var conflict *manufactory.ConflictError
				assert.ErrorAs(t, merged.Err(), &conflict)
			}
		})
	}
}

// TestAddCookBook_SharedRecipeIsEquivalent verifies a closure recipe merged back via a clone is not a conflict.
func TestAddCookBook_SharedRecipeIsEquivalent(t *testing.T) {
	t.Parallel()

	base := manufactory.NewCookBook().AddRetainedFactory(func() *FocusManager { return &FocusManager{} })
	merged := base.Clone().AddCookBook(base)

	assert.True(t, merged.IsValid())
	assert.Len(t, merged.Types(), 1)
}

// TestAddCookBook_UnionsAndPropagatesInvalid verifies recipes are adopted and invalid input poisons the target.
func TestAddCookBook_UnionsAndPropagatesInvalid(t *testing.T) {
	t.Parallel()

	a := manufactory.NewCookBook().AddRetainedFactory(newFocusManager)
	b := manufactory.NewCookBook().AddRetainedFactory(newAudioPlayer)

	a.AddCookBook(b).AddCookBook(nil)
	require.True(t, a.IsValid())
	assert.Equal(t, []typeindex.Index{typeindex.Of[*FocusManager](), typeindex.Of[*AudioPlayer]()}, a.Types())

	bad := manufactory.NewCookBook().AddUniqueFactory(nil)
	a.AddCookBook(bad)
	assert.False(t, a.IsValid())
	assert.ErrorIs(t, a.Err(), manufactory.ErrNilProducer)
}

// TestClone_IsIndependent verifies a clone does not see later registrations.
func TestClone_IsIndependent(t *testing.T) {
	t.Parallel()

	cb := manufactory.NewCookBook().AddRetainedFactory(newFocusManager)
	clone := cb.Clone()
	cb.AddRetainedFactory(newAudioPlayer)

	assert.Len(t, cb.Types(), 2)
	assert.Len(t, clone.Types(), 1)
}

//
// -----------------------------------------------------------------------------
// CheckCompleteness
// -----------------------------------------------------------------------------

// TestCheckCompleteness_Cycles verifies any cycle, reachable or not, fails validation.
func TestCheckCompleteness_Cycles(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		build    func() *manufactory.CookBook
		wantPath []typeindex.Index
	}{
		{
			name: "A and B depend on each other",
			build: func() *manufactory.CookBook {
				return manufactory.NewCookBook().AddUniqueFactory(newCyclicA).AddUniqueFactory(newCyclicB)
			},
			wantPath: []typeindex.Index{
				typeindex.Of[InterfaceA](), typeindex.Of[InterfaceB](), typeindex.Of[InterfaceA](),
			},
		},
		{
			name: "isolated cycle next to a healthy graph",
			build: func() *manufactory.CookBook {
				return manufactory.NewCookBook().
					AddRetainedFactory(newFocusManager).
					AddRetainedFactory(newAudioPlayer).
					AddUniqueFactory(newCyclicB).
					AddUniqueFactory(newCyclicA)
			},
			wantPath: []typeindex.Index{
				typeindex.Of[InterfaceB](), typeindex.Of[InterfaceA](), typeindex.Of[InterfaceB](),
			},
		},
		{
			name: "self dependency",
			build: func() *manufactory.CookBook {
				return manufactory.NewCookBook().AddUniqueFactory(func(a InterfaceA) InterfaceA { return a })
			},
			wantPath: []typeindex.Index{typeindex.Of[InterfaceA](), typeindex.Of[InterfaceA]()},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cb := tc.build()
			require.True(t, cb.IsValid(), "cycles are not detected at registration")

			assert.False(t, cb.CheckCompleteness())
			assert.False(t, cb.IsValid(), "a cycle invalidates the cookbook")

			var cycle *manufactory.CycleError
			require.ErrorAs(t, cb.Err(), &cycle)
			assert.Equal(t, tc.wantPath, cycle.Path)
		})
	}
}

// TestCheckCompleteness_MissingDependencies verifies every missing required dependency is named.
func TestCheckCompleteness_MissingDependencies(t *testing.T) {
	t.Parallel()

	cb := manufactory.NewCookBook().
		AddRetainedFactory(newAudioPlayer).
		AddRetainedFactory(newAlerts).
		AddRetainedFactory(newAFromAB)

	assert.False(t, cb.CheckCompleteness())

	var missing []*manufactory.MissingDependencyError
	for _, e := range cb.Err().(interface{ Unwrap() []error }).Unwrap() {
		var m *manufactory.MissingDependencyError
		require.True(t, errors.As(e, &m))
		missing = append(missing, m)
	}
	require.Len(t, missing, 2, "optional *MetricSink is not reported")
	assert.Equal(t, typeindex.Of[*FocusManager](), missing[0].Dependency)
	assert.Equal(t, typeindex.Of[InterfaceAB](), missing[1].Dependency)
	assert.Contains(t, cb.Err().Error(), "*manufactory_test.FocusManager")
}

// TestCheckCompleteness_Healthy verifies a complete acyclic CookBook passes.
func TestCheckCompleteness_Healthy(t *testing.T) {
	t.Parallel()

	cb := manufactory.NewCookBook().
		AddRetainedFactory(newFocusManager).
		AddRetainedFactory(newAudioPlayer).
		AddRetainedFactory(newAlerts)

	assert.True(t, cb.CheckCompleteness())
	assert.NoError(t, cb.Err())
}
