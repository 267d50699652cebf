// Command nidas-wind-replay feeds a file of raw sonic frames through
// internal/wind's correction pipeline and a configured cal-file,
// printing or archiving the corrected samples (spec §6's wind pipeline
// boundary, reimplemented here as an offline replay tool rather than
// the live serial-attached engine).
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ncar-nidas/daq-core/internal/wind"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("nidas-wind-replay", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "path to the replay YAML config")
	inputPath := fs.StringP("input", "i", "", "path to the raw frame file")
	outputPath := fs.StringP("output", "o", "", "path to write output (default stdout)")
	streamID := fs.Uint16("stream-id", 1, "stream id stamped into archive records")
	archive := fs.Bool("archive", false, "write CBOR archive records instead of a text table")
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "wind-replay"})

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s -c <config.yaml> -i <frames.bin> [-o out] [--archive]\n", fs.Name())
		fmt.Fprintln(os.Stderr, fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *configPath == "" || *inputPath == "" {
		fs.Usage()
		return 1
	}

	cfg, err := loadReplayConfig(*configPath)
	if err != nil {
		logger.Error("load config", "err", err)
		return 1
	}

	pipeline, err := buildPipeline(cfg, time.Now())
	if err != nil {
		logger.Error("build pipeline", "err", err)
		return 1
	}

	in, err := os.Open(*inputPath)
	if err != nil {
		logger.Error("open input", "err", err)
		return 1
	}
	defer in.Close()

	out := os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			logger.Error("open output", "err", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	n, err := replay(pipeline, bufio.NewReader(in), out, *streamID, *archive, cfg.SampleIntervalMicros, logger)
	if err != nil {
		logger.Error("replay failed", "err", err, "records_processed", n)
		return 1
	}
	logger.Info("replay complete", "records", n)
	return 0
}

// replay reads fixed-length raw frames from r, runs each through
// pipeline, and writes the corrected samples to w. Timestamps are
// synthesized at the configured sample interval, since a replay file
// carries no IRIG-stamped arrival time of its own.
func replay(pipeline *wind.Pipeline, r io.Reader, w io.Writer, streamID uint16, archive bool, interval int64, logger *log.Logger) (int, error) {
	frameLen := pipeline.FrameLength()
	buf := make([]byte, frameLen)
	timestamp := int64(0)

	count := 0
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF {
				return count, nil
			}
			if err == io.ErrUnexpectedEOF {
				return count, nil
			}
			return count, fmt.Errorf("wind-replay: read frame %d: %w", count, err)
		}

		rec, err := pipeline.Process(buf, timestamp)
		if err != nil {
			logger.Warn("frame skipped", "index", count, "err", err)
			timestamp += interval
			continue
		}

		if archive {
			enc, err := wind.EncodeArchive(streamID, rec)
			if err != nil {
				return count, fmt.Errorf("wind-replay: encode archive record %d: %w", count, err)
			}
			if _, err := w.Write(enc); err != nil {
				return count, fmt.Errorf("wind-replay: write: %w", err)
			}
		} else {
			fmt.Fprintf(w, "%d u=%.4f v=%.4f w=%.4f tc=%.4f spd=%.4f dir=%.2f diag=%#04x counter_ok=%t\n",
				rec.Timestamp, rec.U, rec.V, rec.W, rec.Tc, rec.Spd, rec.Dir, rec.Diag, rec.CounterOK)
		}

		timestamp += interval
		count++
	}
}
