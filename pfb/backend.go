package pfb

import (
	"github.com/hydroframe/go-native-pfb/internal"
	"github.com/hydroframe/go-native-pfb/pfb/api"
	"github.com/hydroframe/go-native-pfb/pfb/dataset"
	"github.com/hydroframe/go-native-pfb/pfb/fast"
	"github.com/hydroframe/go-native-pfb/pfb/portable"
)

// Implementation identifies which codec/adapter pair is active.
type Implementation string

const (
	Accelerated Implementation = "accelerated"
	Portable    Implementation = "portable"
)

// Backend is the immutable codec/adapter pair a DataService is built on.
// Both pairs behave identically for every documented operation; only
// performance differs.
type Backend struct {
	Implementation Implementation
	Codec          api.Codec
	Adapter        dataset.Adapter
}

var logger = internal.NewLogger()

// ResolveBackend picks the accelerated pair when the platform supports it and
// falls back to the portable pair otherwise. The portable pair has no runtime
// requirements, so resolution always succeeds.
func ResolveBackend() Backend {
	if codec, err := fast.Probe(); err == nil {
		return Backend{
			Implementation: Accelerated,
			Codec:          codec,
			Adapter:        dataset.NewAdapter(string(Accelerated), codec),
		}
	}
	logger.Info("falling back to the portable codec")
	codec := portable.NewCodec()
	return Backend{
		Implementation: Portable,
		Codec:          codec,
		Adapter:        dataset.NewAdapter(string(Portable), codec),
	}
}
