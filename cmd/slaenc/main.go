// Command slaenc encodes a WAV file into the SLA lossless audio format.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/pkg/errors"

	"github.com/go-sla/sla"
)

func main() {
	var (
		force          bool
		parcorOrder    int
		longtermOrder  int
		lmsOrder       int
		lmsCascade     int
		maxBlockSize   int
		chProcess      string
		windowFunction string
	)
	flag.BoolVar(&force, "f", false, "force overwrite")
	flag.IntVar(&parcorOrder, "parcor-order", 32, "PARCOR predictor order")
	flag.IntVar(&longtermOrder, "longterm-order", 4, "long-term predictor order (0 disables)")
	flag.IntVar(&lmsOrder, "lms-order", 16, "adaptive filter order per cascade stage")
	flag.IntVar(&lmsCascade, "lms-cascade", 2, "number of cascaded adaptive filter stages")
	flag.IntVar(&maxBlockSize, "max-block-size", 4096, "maximum block size in samples")
	flag.StringVar(&chProcess, "ch-process", "auto", "channel decorrelation: auto, raw, ms")
	flag.StringVar(&windowFunction, "window", "hann", "analysis window: rect, sin, hann, blackman")
	flag.Parse()

	opts := options{
		force:          force,
		parcorOrder:    parcorOrder,
		longtermOrder:  longtermOrder,
		lmsOrder:       lmsOrder,
		lmsCascade:     lmsCascade,
		maxBlockSize:   maxBlockSize,
		chProcess:      chProcess,
		windowFunction: windowFunction,
	}
	for _, wavPath := range flag.Args() {
		if err := wav2sla(wavPath, opts); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

type options struct {
	force          bool
	parcorOrder    int
	longtermOrder  int
	lmsOrder       int
	lmsCascade     int
	maxBlockSize   int
	chProcess      string
	windowFunction string
}

func wav2sla(wavPath string, opts options) error {
	r, err := os.Open(wavPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer r.Close()

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return errors.Errorf("invalid WAV file %q", wavPath)
	}
	if err := dec.FwdToPCM(); err != nil {
		return errors.WithStack(err)
	}
	sampleRate, nchannels, bps := int(dec.SampleRate), int(dec.NumChans), int(dec.BitDepth)

	slaPath := pathutil.TrimExt(wavPath) + ".sla"
	if !opts.force && osutil.Exists(slaPath) {
		return errors.Errorf("SLA file %q already present; use -f flag to force overwrite", slaPath)
	}

	channels, numSamples, err := readAllSamples(dec, nchannels, bps)
	if err != nil {
		return err
	}

	chProcess, err := parseChProcess(opts.chProcess, nchannels)
	if err != nil {
		return err
	}
	windowType, err := parseWindowFunction(opts.windowFunction)
	if err != nil {
		return err
	}

	capacity := sla.Capacity{
		MaxNumChannels:       uint8(nchannels),
		MaxNumBlockSamples:   uint16(opts.maxBlockSize),
		MaxParcorOrder:       uint8(opts.parcorOrder),
		MaxLongtermOrder:     uint8(opts.longtermOrder),
		MaxLMSOrderPerFilter: uint8(opts.lmsOrder),
	}
	enc, err := sla.Create(capacity)
	if err != nil {
		return errors.WithStack(err)
	}
	defer enc.Destroy()
	enc.Logger = log.New(os.Stderr, "", 0)

	if err := enc.SetWaveFormat(sla.WaveFormat{
		NumChannels:  uint8(nchannels),
		SamplingRate: uint32(sampleRate),
		BitPerSample: uint8(bps),
	}); err != nil {
		return errors.WithStack(err)
	}
	if err := enc.SetEncodeParameter(sla.EncodeParameter{
		ParcorOrder:         uint8(opts.parcorOrder),
		LongtermOrder:       uint8(opts.longtermOrder),
		LMSOrderPerFilter:   uint8(opts.lmsOrder),
		NumLMSFilterCascade: uint8(opts.lmsCascade),
		MaxNumBlockSamples:  uint16(opts.maxBlockSize),
		ChProcessMethod:     chProcess,
		WindowFunctionType:  windowType,
	}); err != nil {
		return errors.WithStack(err)
	}

	// Every sample, every coefficient and a block header per max_block_size
	// samples; generous enough that EncodeWhole never reports
	// INSUFFICIENT_BUFFER_SIZE for real-world inputs.
	bufSize := numSamples*nchannels*4 + (numSamples/opts.maxBlockSize+2)*256 + sla.HeaderSize
	buf := make([]byte, bufSize)
	n, err := enc.EncodeWhole(channels, numSamples, buf)
	if err != nil {
		return errors.WithStack(err)
	}

	w, err := os.Create(slaPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer w.Close()
	if _, err := w.Write(buf[:n]); err != nil {
		return errors.WithStack(err)
	}

	fmt.Printf("%s: %d samples, %d channels, %d-bit -> %d bytes\n", slaPath, numSamples, nchannels, bps, n)
	return nil
}

// readAllSamples decodes the entire PCM stream and returns one int32 slice
// per channel, each sample left-justified to the top of a 32-bit word
// (value << (32 - bps)), matching the convention Encoder.EncodeBlock expects.
func readAllSamples(dec *wav.Decoder, nchannels, bps int) ([][]int32, int, error) {
	const samplesPerRead = 4096
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: nchannels,
			SampleRate:  int(dec.SampleRate),
		},
		Data:           make([]int, samplesPerRead*nchannels),
		SourceBitDepth: bps,
	}

	channels := make([][]int32, nchannels)
	total := 0
	shift := uint(32 - bps)
	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return nil, 0, errors.WithStack(err)
		}
		if n == 0 {
			break
		}
		frames := n / nchannels
		for ch := 0; ch < nchannels; ch++ {
			channels[ch] = append(channels[ch], make([]int32, frames)...)
		}
		for i := 0; i < frames; i++ {
			for ch := 0; ch < nchannels; ch++ {
				channels[ch][total+i] = int32(buf.Data[i*nchannels+ch]) << shift
			}
		}
		total += frames
		if n < len(buf.Data) {
			break
		}
	}
	return channels, total, nil
}

func parseChProcess(s string, nchannels int) (sla.ChProcessMethod, error) {
	switch s {
	case "raw":
		return sla.ChProcessRaw, nil
	case "ms":
		return sla.ChProcessStereoMS, nil
	case "auto":
		if nchannels == 2 {
			return sla.ChProcessStereoMS, nil
		}
		return sla.ChProcessRaw, nil
	default:
		return 0, errors.Errorf("unknown -ch-process value %q", s)
	}
}

func parseWindowFunction(s string) (sla.WindowFunctionType, error) {
	switch s {
	case "rect":
		return sla.WindowRect, nil
	case "sin":
		return sla.WindowSin, nil
	case "hann":
		return sla.WindowHann, nil
	case "blackman":
		return sla.WindowBlackman, nil
	default:
		return 0, errors.Errorf("unknown -window value %q", s)
	}
}
