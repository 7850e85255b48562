package capture

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/eternalApril/moonresp/internal/resp"
)

// Replay decodes every frame in filename in order and hands it to fn.
// A missing file is an empty log. Decoding stops at the first error; frames
// handed to fn before it stay processed
func Replay(filename string, fn func(resp.Value) error, opts ...resp.Option) error {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Fresh start
		}
		return err
	}
	defer file.Close() //nolint:errcheck

	dec := resp.NewDecoder(file, opts...)

	for i := 0; ; i++ {
		val, err := dec.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("capture %s: frame %d: %w", filename, i, err)
		}

		if err := fn(val); err != nil {
			return err
		}
	}
}

// Load reads all frames of filename. On a decode failure it returns the
// frames read before the bad one together with the error
func Load(filename string, opts ...resp.Option) ([]resp.Value, error) {
	var frames []resp.Value

	err := Replay(filename, func(v resp.Value) error {
		frames = append(frames, v)
		return nil
	}, opts...)

	return frames, err
}
