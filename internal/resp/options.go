package resp

const (
	// DefaultMaxDepth bounds array nesting for both directions
	DefaultMaxDepth = 512
	// DefaultMaxBulkLength matches the default proto-max-bulk-len of Redis (512 MiB)
	DefaultMaxBulkLength = 512 << 20
)

type options struct {
	maxDepth      int
	maxBulkLength int64
}

func defaultOptions() options {
	return options{
		maxDepth:      DefaultMaxDepth,
		maxBulkLength: DefaultMaxBulkLength,
	}
}

// Option tunes a Decoder or an Encoder
type Option func(*options)

// WithMaxDepth limits how deep arrays may nest. n <= 0 disables the limit
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// WithMaxBulkLength limits the declared length of a bulk string the Decoder
// accepts. n <= 0 disables the limit
func WithMaxBulkLength(n int64) Option {
	return func(o *options) {
		o.maxBulkLength = n
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) depthExceeded(depth int) bool {
	return o.maxDepth > 0 && depth > o.maxDepth
}
