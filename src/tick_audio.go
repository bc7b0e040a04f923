package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Use a sound card as both tick source and DAC.
 *
 * Description:	The PortAudio stream callback asks for a buffer of
 *		output frames.  Each frame is one tick: call the handler,
 *		which writes a DAC code back to us through WriteDAC,
 *		and convert that code to a float sample.  The sound
 *		card's clock is then the timer.
 *
 *		Needs a device that will run at 200 kHz, which rules
 *		out most consumer cards.  Some pro interfaces and SDR
 *		transmit front ends will do it.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

type AudioTick struct {
	Device          string // Name, or "" for the default output.
	FramesPerBuffer int

	code uint16 // Written by WriteDAC within the callback.
}

func NewAudioTick(device string) *AudioTick {
	return &AudioTick{Device: device, FramesPerBuffer: 2000, code: DAC_OFFSET}
}

// WriteDAC makes AudioTick the transmitter's sink.
func (a *AudioTick) WriteDAC(code uint16) {
	a.code = code
}

func findOutputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		return portaudio.DefaultOutputDevice()
	}

	var devices, err = portaudio.Devices()
	if err != nil {
		return nil, err
	}

	for _, d := range devices {
		if d.Name == name && d.MaxOutputChannels > 0 {
			return d, nil
		}
	}

	return nil, fmt.Errorf("no audio output device named %q", name)
}

func (a *AudioTick) Run(ctx context.Context, handler func()) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate() //nolint:errcheck

	var dev, devErr = findOutputDevice(a.Device)
	if devErr != nil {
		return fmt.Errorf("audio device: %w", devErr)
	}

	var params = portaudio.HighLatencyParameters(nil, dev)
	params.Output.Channels = 1
	params.SampleRate = SAMPLE_RATE_HZ
	params.FramesPerBuffer = a.FramesPerBuffer

	var stream, openErr = portaudio.OpenStream(params, func(out []float32) {
		for i := range out {
			handler()
			out[i] = float32(dacToPCM16(a.code)) / 32768
		}
	})
	if openErr != nil {
		return fmt.Errorf("open %s at %d Hz: %w", dev.Name, SAMPLE_RATE_HZ, openErr)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start %s: %w", dev.Name, err)
	}

	logger.Info("Audio output started", "device", dev.Name, "rate", SAMPLE_RATE_HZ)

	<-ctx.Done()

	return stream.Stop()
}
