package sdkclient

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/sghaida/manufactory/typeindex"
)

type presetComponent struct {
	idx   typeindex.Index
	value any
}

// Builder collects feature builders and components and resolves them.
type Builder struct {
	features   []FeatureClientBuilder
	components []presetComponent
	log        *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used by Build and by the resulting Registry.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithFeature adds a feature builder. Configure runs in the order features
// were added. A nil builder is ignored.
func (b *Builder) WithFeature(fb FeatureClientBuilder) *Builder {
	if fb != nil {
		b.features = append(b.features, fb)
	}
	return b
}

// WithComponent adds a component available before any feature is built,
// keyed by its dynamic type.
func (b *Builder) WithComponent(v any) *Builder {
	return b.WithComponentAs(typeindex.OfType(reflect.TypeOf(v)), v)
}

// WithComponentAs adds a component under an explicit type.
func (b *Builder) WithComponentAs(idx typeindex.Index, v any) *Builder {
	b.components = append(b.components, presetComponent{idx: idx, value: v})
	return b
}

// Build constructs every feature client, then configures them.
//
// Construction runs in passes: each pass constructs every pending builder
// whose RequiredTypes are all registered, until a pass makes no progress.
// Builders still pending then fail the build with an *UnsatisfiedError.
//
// On any failure the clients constructed so far are shut down in reverse
// order and no Registry is returned. A client whose type is already
// registered is shut down right away.
func (b *Builder) Build() (*Registry, error) {
	reg := newRegistry(b.log)
	for _, c := range b.components {
		if err := reg.registerComponent(c.idx, c.value); err != nil {
			return nil, err
		}
	}

	// builders are tracked by position; their dynamic types need not be comparable
	built := make([]FeatureClient, len(b.features))
	pending := make([]int, len(b.features))
	for i := range pending {
		pending[i] = i
	}
	for pass := 1; len(pending) > 0; pass++ {
		var next []int
		for _, i := range pending {
			fb := b.features[i]
			if len(missingTypes(reg, fb)) > 0 {
				next = append(next, i)
				continue
			}
			client, err := construct(reg, fb)
			if err != nil {
				reg.Shutdown()
				return nil, &ConstructError{Builder: fb.Name(), Cause: err}
			}
			built[i] = client
			b.log.Debug("feature client constructed", zap.String("builder", fb.Name()), zap.Int("pass", pass))
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}

	if len(pending) > 0 {
		unsatisfied := &UnsatisfiedError{}
		for _, i := range pending {
			fb := b.features[i]
			unsatisfied.Pending = append(unsatisfied.Pending, Unsatisfied{Builder: fb.Name(), Missing: missingTypes(reg, fb)})
		}
		b.log.Error("feature clients cannot be built", zap.Error(unsatisfied))
		reg.Shutdown()
		return nil, unsatisfied
	}

	for i, fb := range b.features {
		ok, err := reg.configure(built[i])
		if err == nil && !ok {
			err = ErrConfigureRejected
		}
		if err != nil {
			b.log.Error("feature client configuration failed", zap.String("builder", fb.Name()), zap.Error(err))
			reg.Shutdown()
			return nil, &ConfigureError{Builder: fb.Name(), Cause: err}
		}
	}
	return reg, nil
}

func missingTypes(reg *Registry, fb FeatureClientBuilder) []typeindex.Index {
	var missing []typeindex.Index
	for _, idx := range fb.RequiredTypes() {
		if !reg.Has(idx) {
			missing = append(missing, idx)
		}
	}
	return missing
}

func construct(reg *Registry, fb FeatureClientBuilder) (client FeatureClient, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			client = nil
			err = fmt.Errorf("%w: %v", ErrConstructPanic, rec)
		}
	}()

	client, err = fb.Construct(reg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrNilClient
	}
	if err := reg.addClient(client); err != nil {
		// never registered, so Registry.Shutdown will not reach it
		reg.shutdownClient(client)
		return nil, err
	}
	return client, nil
}
