package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Factory creates loaders by type and loads locations
type Factory struct {
	loaders  map[SourceType]func() Loader
	detector *Detector
	mu       sync.RWMutex
}

// NewFactory creates a factory with the built-in loaders registered
func NewFactory() *Factory {
	f := &Factory{
		loaders:  make(map[SourceType]func() Loader),
		detector: NewDetector(),
	}

	f.RegisterLoaderFactory(SourceTypeWAV, func() Loader {
		return NewWAVLoader()
	})
	f.RegisterLoaderFactory(SourceTypeRaw, func() Loader {
		return NewRawLoader()
	})
	f.RegisterLoaderFactory(SourceTypeFixture, func() Loader {
		return NewFixtureLoader()
	})
	f.RegisterLoaderFactory(SourceTypeSynthetic, func() Loader {
		return NewSyntheticLoader()
	})

	return f
}

// CreateLoader creates a loader for the given source type
func (f *Factory) CreateLoader(sourceType SourceType) (Loader, error) {
	f.mu.RLock()
	loaderFactory, exists := f.loaders[sourceType]
	f.mu.RUnlock()

	if !exists {
		return nil, NewSourceError(
			sourceType, "", ErrCodeUnsupported,
			fmt.Sprintf("unsupported source type: %s", sourceType),
			nil,
		)
	}

	return loaderFactory(), nil
}

// DetectAndLoad detects the source type of location and loads it
func (f *Factory) DetectAndLoad(ctx context.Context, location string, opts LoadOptions) (*Loaded, error) {
	sourceType, err := f.detector.DetectType(location)
	if err != nil {
		return nil, fmt.Errorf("failed to detect source type: %w", err)
	}

	loader, err := f.CreateLoader(sourceType)
	if err != nil {
		return nil, err
	}

	return loader.Load(ctx, location, opts)
}

// RegisterLoaderFactory registers or replaces a loader factory function
func (f *Factory) RegisterLoaderFactory(sourceType SourceType, factory func() Loader) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.loaders[sourceType] = factory
}

// SupportedTypes returns the registered source types in sorted order
func (f *Factory) SupportedTypes() []SourceType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]SourceType, 0, len(f.loaders))
	for sourceType := range f.loaders {
		types = append(types, sourceType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
