package manufactory_test

import (
	"sync"
	"sync/atomic"

	"github.com/sghaida/manufactory/manufactory"
)

type InterfaceA interface{ A() int }

type InterfaceB interface{ B() int }

type InterfaceAB interface {
	InterfaceA
	InterfaceB
	ID() int64
	SetA(v int)
}

type ab struct {
	id   int64
	a, b int
	tag  string
}

func (x *ab) A() int      { return x.a }
func (x *ab) B() int      { return x.b }
func (x *ab) ID() int64   { return x.id }
func (x *ab) SetA(v int)  { x.a = v }
func (x *ab) Tag() string { return x.tag }

// sequence hands out identities so tests can tell instances apart after the
// previous one has been collected.
type sequence struct{ next atomic.Int64 }

func (s *sequence) newAB() InterfaceAB { return &ab{id: s.next.Add(1), tag: "seq"} }

func newAB() InterfaceAB { return &ab{tag: "ab"} }

func newOtherAB() InterfaceAB { return &ab{tag: "other"} }

func newAFromAB(x InterfaceAB) InterfaceA { return x }

func newBFromAB(x InterfaceAB) InterfaceB { return x }

func newCyclicA(InterfaceB) InterfaceA { return &ab{} }

func newCyclicB(InterfaceA) InterfaceB { return &ab{} }

type annotation1 struct{}

type annotation2 struct{}

func newAnnotated1() manufactory.Annotated[annotation1, InterfaceAB] {
	return manufactory.Annotate[annotation1, InterfaceAB](&ab{tag: "one"})
}

func newAnnotated2() manufactory.Annotated[annotation2, InterfaceAB] {
	return manufactory.Annotate[annotation2, InterfaceAB](&ab{tag: "two"})
}

// voice client shaped fixtures

type FocusManager struct{ channel string }

type AudioPlayer struct{ focus *FocusManager }

type MetricSink struct{ name string }

type Alerts struct {
	player  *AudioPlayer
	metrics *MetricSink
}

func newFocusManager() *FocusManager { return &FocusManager{channel: "dialog"} }

func newAudioPlayer(f *FocusManager) *AudioPlayer { return &AudioPlayer{focus: f} }

func newAlerts(p *AudioPlayer, m manufactory.Optional[*MetricSink]) *Alerts {
	return &Alerts{player: p, metrics: m.OrElse(nil)}
}

// recorder collects production events across goroutines.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
