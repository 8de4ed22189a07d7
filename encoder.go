package sla

import (
	"log"

	"github.com/mewkiz/pkg/errutil"
)

// Encoder is the encoder handle: its per-block scratch buffers are allocated
// once at Create, sized to the supplied Capacity, and reused across every
// EncodeBlock/EncodeWhole call. The block-partition search run by
// EncodeWhole allocates its own per-sample scratch on every call. Logger receives encode progress messages and
// is never required for correctness; it defaults to log.Default().
type Encoder struct {
	capacity Capacity

	waveFormat    WaveFormat
	waveFormatSet bool

	encodeParameter    EncodeParameter
	encodeParameterSet bool

	Logger *log.Logger

	inputDouble     [][]float64
	inputInt32      [][]int32
	window          []float64
	parcorCoefD     [][]float64
	parcorCoefQ31   [][]int32
	longtermCoefD   [][]float64
	longtermCoefQ31 [][]int32
	pitchPeriod     []int
	isSilenceBlock  []bool
	residual        [][]int32
	tmpResidual     [][]int32
	residualDouble  [][]float64
}

// Create allocates an Encoder with scratch sized to capacity. EncodeBlock
// never allocates per-sample state; EncodeWhole does, through
// SearchOptimalBlockPartitions, which allocates downshifted and residual
// copies of each window it searches.
func Create(capacity Capacity) (*Encoder, error) {
	if capacity.MaxNumChannels == 0 || int(capacity.MaxNumChannels) > MaxChannels {
		return nil, errutil.Err(InvalidArgument)
	}
	if capacity.MaxNumBlockSamples < MinBlockNumSamples {
		return nil, errutil.Err(InvalidArgument)
	}

	nch := int(capacity.MaxNumChannels)
	nsamp := int(capacity.MaxNumBlockSamples)

	e := &Encoder{
		capacity: capacity,
		Logger:   log.Default(),

		inputDouble:     make([][]float64, nch),
		inputInt32:      make([][]int32, nch),
		window:          make([]float64, nsamp),
		parcorCoefD:     make([][]float64, nch),
		parcorCoefQ31:   make([][]int32, nch),
		longtermCoefD:   make([][]float64, nch),
		longtermCoefQ31: make([][]int32, nch),
		pitchPeriod:     make([]int, nch),
		isSilenceBlock:  make([]bool, nch),
		residual:        make([][]int32, nch),
		tmpResidual:     make([][]int32, nch),
		residualDouble:  make([][]float64, nch),
	}
	for ch := 0; ch < nch; ch++ {
		e.inputDouble[ch] = make([]float64, nsamp)
		e.inputInt32[ch] = make([]int32, nsamp)
		e.parcorCoefD[ch] = make([]float64, int(capacity.MaxParcorOrder)+1)
		e.parcorCoefQ31[ch] = make([]int32, int(capacity.MaxParcorOrder)+1)
		e.longtermCoefD[ch] = make([]float64, int(capacity.MaxLongtermOrder))
		e.longtermCoefQ31[ch] = make([]int32, int(capacity.MaxLongtermOrder))
		e.residual[ch] = make([]int32, nsamp)
		e.tmpResidual[ch] = make([]int32, nsamp)
		e.residualDouble[ch] = make([]float64, nsamp)
	}
	return e, nil
}

// Destroy releases the encoder's scratch buffers. Go's garbage collector
// reclaims the backing memory regardless, but Destroy is provided so the
// handle's lifecycle mirrors SLAEncoder_Create/SLAEncoder_Destroy exactly:
// after Destroy, e must not be used again.
func (e *Encoder) Destroy() {
	*e = Encoder{}
}

// SetWaveFormat validates and stores wf. Runtime channel count must fit the
// handle's capacity.
func (e *Encoder) SetWaveFormat(wf WaveFormat) error {
	if wf.NumChannels == 0 || wf.BitPerSample == 0 || wf.BitPerSample > 32 {
		return errutil.Err(InvalidArgument)
	}
	if wf.NumChannels > e.capacity.MaxNumChannels {
		return errutil.Err(ExceedHandleCapacity)
	}
	e.waveFormat = wf
	e.waveFormatSet = true
	return nil
}

// SetEncodeParameter validates and stores ep. Runtime orders and block size
// must fit the handle's capacity; if a WaveFormat has already been set, the
// channel-process/channel-count compatibility is checked immediately.
func (e *Encoder) SetEncodeParameter(ep EncodeParameter) error {
	if ep.MaxNumBlockSamples < MinBlockNumSamples {
		return errutil.Err(InvalidArgument)
	}
	if _, ok := ep.WindowFunctionType.toSDSP(); !ok {
		return errutil.Err(InvalidWindowFunctionType)
	}
	if ep.ChProcessMethod != ChProcessRaw && ep.ChProcessMethod != ChProcessStereoMS {
		return errutil.Err(InvalidChProcessMethod)
	}
	if ep.ParcorOrder > e.capacity.MaxParcorOrder ||
		ep.LongtermOrder > e.capacity.MaxLongtermOrder ||
		ep.LMSOrderPerFilter > e.capacity.MaxLMSOrderPerFilter ||
		ep.MaxNumBlockSamples > e.capacity.MaxNumBlockSamples {
		return errutil.Err(ExceedHandleCapacity)
	}
	if e.waveFormatSet && ep.ChProcessMethod == ChProcessStereoMS && e.waveFormat.NumChannels != 2 {
		return errutil.Err(InvalidChProcessMethod)
	}
	e.encodeParameter = ep
	e.encodeParameterSet = true
	return nil
}
