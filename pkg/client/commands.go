package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/wire"
)

// PushRawPixels uploads a raw RGB framebuffer to one device. Three
// requests are issued strictly in order, each waiting for the previous
// reply and short-circuiting on the first error:
//
//  1. device_options clearing the status LED override and disabling
//     dithering and interpolation
//  2. device_color_correction with unity gamma and whitepoint
//  3. device_pixels with the buffer itself
//
// Steps 1 and 2 guarantee the bytes reach the hardware unmodified.
func (c *Client) PushRawPixels(ctx context.Context, device wire.Device, pixels wire.Pixels) error {
	requests := []wire.Request{
		wire.NewDeviceOptions(device, wire.Options{}),
		wire.NewDeviceColorCorrection(device, wire.UnityColorCorrection()),
		wire.NewDevicePixels(device, pixels),
	}

	for _, req := range requests {
		reply, err := c.Send(ctx, req)
		if err != nil {
			return err
		}
		if reply.Error != "" {
			return &DeviceCommandError{
				Serial:      device.Serial,
				MessageType: req.MessageType(),
				Message:     reply.Error,
			}
		}
	}
	return nil
}

// AllLightsOff pushes an all-zero framebuffer to every enumerated
// device concurrently. All per-device chains run to completion; the
// first error in device order is returned. Commands already issued
// are not rolled back.
func (c *Client) AllLightsOff(ctx context.Context) error {
	return c.fanOut(ctx, func(wire.Device) wire.Pixels {
		return make(wire.Pixels, wire.LEDsPerDevice*3)
	})
}

// IdentifyLight lights exactly one LED, on the device with the given
// serial, at full-brightness white, and blanks every other LED on
// every enumerated device. Used as a visual "which physical LED is
// this" diagnostic. Completion semantics match AllLightsOff.
func (c *Client) IdentifyLight(ctx context.Context, serial string, index int) error {
	if index < 0 || index >= wire.LEDsPerDevice {
		return fmt.Errorf("led index %d out of range [0, %d)", index, wire.LEDsPerDevice)
	}
	if _, err := c.Device(serial); err != nil {
		return err
	}

	return c.fanOut(ctx, func(d wire.Device) wire.Pixels {
		buf := make(wire.Pixels, wire.LEDsPerDevice*3)
		if d.Serial == serial {
			buf[3*index] = 255
			buf[3*index+1] = 255
			buf[3*index+2] = 255
		}
		return buf
	})
}

// fanOut runs one PushRawPixels chain per enumerated device, each in
// its own goroutine. Chains are sequential internally, concurrent with
// each other. Wait-for-all semantics: every chain finishes before
// fanOut returns, and the first error in device order is reported.
func (c *Client) fanOut(ctx context.Context, buffer func(wire.Device) wire.Pixels) error {
	devices := c.Devices()
	errs := make([]error, len(devices))

	var wg sync.WaitGroup
	for i, d := range devices {
		wg.Add(1)
		go func(i int, d wire.Device) {
			defer wg.Done()
			errs[i] = c.PushRawPixels(ctx, d, buffer(d))
		}(i, d)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
