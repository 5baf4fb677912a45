package commands

import (
	"fmt"
	"io"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/log"
)

// RunFilter filters the trace file and writes matching events to a new file.
func RunFilter(path, output string, filter log.Filter) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	// Reuse the file logger so the output stays a valid trace file.
	logger, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}

	fmt.Printf("Filtered %d events to %s\n", count, output)
	return nil
}
