// Command respdump decodes a stream of RESP2 frames and prints each one the
// way redis-cli would.
//
// Usage:
//
//	respdump [--raw] [--log-level level] [file]
//
// With no file, frames are read from stdin. A file is read the way the
// server replays its capture log, so a missing file prints nothing.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/eternalApril/moonresp/internal/capture"
	"github.com/eternalApril/moonresp/internal/config"
	"github.com/eternalApril/moonresp/internal/logger"
	"github.com/eternalApril/moonresp/internal/resp"
)

func main() {
	raw := flag.BoolP("raw", "r", false, "re-encode each frame instead of pretty printing it")
	level := flag.StringP("log-level", "l", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	log, err := logger.New(*level, "console", "stderr")
	if err != nil {
		fmt.Fprintln(os.Stderr, "FAILED TO INIT LOGGER:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal("cant load config", zap.Error(err))
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush() //nolint:errcheck

	name := "stdin"
	var n int
	if flag.NArg() > 0 {
		name = flag.Arg(0)
		n, err = dumpFile(name, out, *raw, cfg.Codec.Options()...)
	} else {
		n, err = dump(os.Stdin, out, *raw, cfg.Codec.Options()...)
	}

	log.Debug("decoded frames", zap.String("input", name), zap.Int("frames", n))
	if err != nil {
		out.Flush() //nolint:errcheck
		log.Error("decode failed",
			zap.String("input", name),
			zap.Int("frame", n),
			zap.Stringer("kind", resp.KindOf(err)),
			zap.Error(err),
		)
		os.Exit(1)
	}
}

// dump decodes frames from r until a clean end of input and writes them to w.
// It returns the number of frames written
func dump(r io.Reader, w io.Writer, raw bool, opts ...resp.Option) (int, error) {
	dec := resp.NewDecoder(r, opts...)
	emit := printer(w, raw, opts...)

	for n := 0; ; n++ {
		v, err := dec.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, err
		}

		if err := emit(v); err != nil {
			return n, err
		}
	}
}

// dumpFile prints every frame of a capture file. A missing file has no frames
func dumpFile(filename string, w io.Writer, raw bool, opts ...resp.Option) (int, error) {
	emit := printer(w, raw, opts...)

	n := 0
	err := capture.Replay(filename, func(v resp.Value) error {
		if err := emit(v); err != nil {
			return err
		}
		n++
		return nil
	}, opts...)

	return n, err
}

func printer(w io.Writer, raw bool, opts ...resp.Option) func(resp.Value) error {
	if raw {
		return resp.NewEncoder(w, opts...).Write
	}

	return func(v resp.Value) error {
		_, err := fmt.Fprintln(w, resp.Format(v))
		return err
	}
}
