package motioncore

// BlockType identifies the kind of record a Block carries.
type BlockType uint8

const (
	BlockLine BlockType = iota
	BlockRasterLine
	BlockAirAssistEnable
	BlockAirAssistDisable
	BlockAux1Enable
	BlockAux1Disable
	BlockAux2Enable
	BlockAux2Disable
)

func (t BlockType) String() string {
	switch t {
	case BlockLine:
		return "LINE"
	case BlockRasterLine:
		return "RASTER_LINE"
	case BlockAirAssistEnable:
		return "AIR_ASSIST_ENABLE"
	case BlockAirAssistDisable:
		return "AIR_ASSIST_DISABLE"
	case BlockAux1Enable:
		return "AUX1_ENABLE"
	case BlockAux1Disable:
		return "AUX1_DISABLE"
	case BlockAux2Enable:
		return "AUX2_ENABLE"
	case BlockAux2Disable:
		return "AUX2_DISABLE"
	default:
		return "UNKNOWN"
	}
}

// IsMotion reports whether the block moves the axes (as opposed to a
// one-shot assist toggle).
func (t BlockType) IsMotion() bool {
	return t == BlockLine || t == BlockRasterLine
}

// DirBits packs per-axis direction sign flags: bit 0 = X, bit 1 = Y, bit 2 = Z.
// A set bit means "positive" direction.
type DirBits uint8

const (
	DirX DirBits = 1 << iota
	DirY
	DirZ
)

// Block is a pre-planned motion or command record produced by the
// planner. The motion core treats it as read-only.
type Block struct {
	Type BlockType

	StepsX, StepsY, StepsZ int32
	Direction              DirBits

	// StepEventCount = max(StepsX, StepsY, StepsZ), supplied by the
	// planner rather than recomputed, so the core never needs to know
	// how the planner derived it.
	StepEventCount uint32

	InitialRate  uint32 // steps/minute
	NominalRate  uint32
	FinalRate    uint32
	RateDelta    uint32 // steps/minute per acceleration tick

	AccelerateUntil uint32 // step-event index
	DecelerateAfter uint32 // step-event index

	NominalLaserIntensity uint8 // 0..255

	// PixelSteps is only meaningful for BlockRasterLine: the number of
	// step events per pixel column.
	PixelSteps uint32
}

// StopStatus is the stable stop-reason enumeration surfaced to the
// protocol layer.
type StopStatus uint8

const (
	StopOK StopStatus = iota
	StopLimitHitX1
	StopLimitHitX2
	StopLimitHitY1
	StopLimitHitY2
	StopLimitHitZ1
	StopLimitHitZ2
)

func (s StopStatus) String() string {
	switch s {
	case StopOK:
		return "OK"
	case StopLimitHitX1:
		return "LIMIT_HIT_X1"
	case StopLimitHitX2:
		return "LIMIT_HIT_X2"
	case StopLimitHitY1:
		return "LIMIT_HIT_Y1"
	case StopLimitHitY2:
		return "LIMIT_HIT_Y2"
	case StopLimitHitZ1:
		return "LIMIT_HIT_Z1"
	case StopLimitHitZ2:
		return "LIMIT_HIT_Z2"
	default:
		return "UNKNOWN"
	}
}

// Position is an absolute, signed step-counted position on the three axes.
type Position struct {
	X, Y, Z int64
}

// Planner is the out-of-scope upstream collaborator that fills the
// block queue. THE CORE only ever peeks and pops the head.
type Planner interface {
	// GetCurrentBlock returns the block at the head of the queue
	// without removing it. The second return is false if the queue is
	// empty.
	GetCurrentBlock() (*Block, bool)

	// DiscardCurrentBlock pops the head of the queue.
	DiscardCurrentBlock()

	// ResetBlockBuffer drops all pending blocks.
	ResetBlockBuffer()
}
