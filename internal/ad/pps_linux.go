//go:build linux

package ad

import (
	"context"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// gpioPPS reads the 1PPS edge directly off a GPIO line via the Linux
// gpiocdev character device, for ARM single-board deployments that wire
// PPS to a GPIO pin rather than through the card's own IRIG latch
// (spec §9 open question: ARM variant). Grounded on the debounced
// edge-wait pattern in seedhammer-seedhammer's wshat driver, adapted
// from periph.io's gpio.PinIn.WaitForEdge to gpiocdev's event-channel
// API.
type gpioPPS struct {
	line   *gpiocdev.Line
	events chan gpiocdev.LineEvent
}

// newGPIOPPS requests chipName/offset as a falling-edge input with a
// zero debounce period, delivering edges onto a small buffered channel that
// WaitEdge drains.
func newGPIOPPS(chipName string, offset int) (*gpioPPS, error) {
	events := make(chan gpiocdev.LineEvent, 4)
	handler := func(evt gpiocdev.LineEvent) {
		select {
		case events <- evt:
		default:
			// Drop the edge rather than block the gpiocdev event loop;
			// WaitEdge only needs to know that *an* edge happened.
		}
	}

	line, err := gpiocdev.RequestLine(chipName, offset,
		gpiocdev.AsInput,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(0),
		gpiocdev.WithEventHandler(handler),
	)
	if err != nil {
		return nil, fmt.Errorf("ad: request PPS gpio line %s:%d: %w", chipName, offset, err)
	}
	return &gpioPPS{line: line, events: events}, nil
}

func (g *gpioPPS) WaitEdge(ctx context.Context) error {
	select {
	case <-g.events:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gpioPPS) Close() error {
	return g.line.Close()
}
