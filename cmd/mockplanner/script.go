package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/laserctl/motioncore"
	"github.com/laserctl/motioncore/internal/simhal"
)

// loadScript reads one synthetic block per non-blank, non-comment line
// from r and enqueues it on planner in order. Each line is tokenized
// with shlex, the same way a shell would split it, so a field value
// can be quoted: LINE steps_x=100 steps_y=0 rate=60000 events=100
// The script carries block fields only; it has no field for raster bytes.
func loadScript(r io.Reader, planner *simhal.Planner) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields, err := shlex.Split(line)
		if err != nil {
			return fmt.Errorf("script line %d: %w", lineNo, err)
		}
		if len(fields) == 0 {
			continue
		}

		block, err := parseBlockLine(fields)
		if err != nil {
			return fmt.Errorf("script line %d: %w", lineNo, err)
		}
		planner.Enqueue(block)
	}
	return scanner.Err()
}

// parseBlockLine turns a tokenized script line into a Block. fields[0]
// names the block type; the rest are key=value pairs applied to the
// matching Block field.
func parseBlockLine(fields []string) (*motioncore.Block, error) {
	kind := strings.ToUpper(fields[0])
	block := &motioncore.Block{}

	switch kind {
	case "LINE":
		block.Type = motioncore.BlockLine
	case "RASTER":
		block.Type = motioncore.BlockRasterLine
	case "AIR_ON":
		block.Type = motioncore.BlockAirAssistEnable
		return block, nil
	case "AIR_OFF":
		block.Type = motioncore.BlockAirAssistDisable
		return block, nil
	case "AUX1_ON":
		block.Type = motioncore.BlockAux1Enable
		return block, nil
	case "AUX1_OFF":
		block.Type = motioncore.BlockAux1Disable
		return block, nil
	case "AUX2_ON":
		block.Type = motioncore.BlockAux2Enable
		return block, nil
	case "AUX2_OFF":
		block.Type = motioncore.BlockAux2Disable
		return block, nil
	default:
		return nil, fmt.Errorf("unknown block type %q", fields[0])
	}

	for _, kv := range fields[1:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("malformed field %q, want key=value", kv)
		}
		if err := setBlockField(block, key, value); err != nil {
			return nil, err
		}
	}
	return block, nil
}

func setBlockField(block *motioncore.Block, key, value string) error {
	u64 := func() (uint64, error) { return strconv.ParseUint(value, 10, 32) }
	i64 := func() (int64, error) { return strconv.ParseInt(value, 10, 32) }

	switch key {
	case "steps_x":
		v, err := i64()
		block.StepsX = int32(v)
		return err
	case "steps_y":
		v, err := i64()
		block.StepsY = int32(v)
		return err
	case "steps_z":
		v, err := i64()
		block.StepsZ = int32(v)
		return err
	case "dir":
		v, err := u64()
		block.Direction = motioncore.DirBits(v)
		return err
	case "events":
		v, err := u64()
		block.StepEventCount = uint32(v)
		return err
	case "initial_rate":
		v, err := u64()
		block.InitialRate = uint32(v)
		return err
	case "rate":
		v, err := u64()
		block.NominalRate = uint32(v)
		return err
	case "final_rate":
		v, err := u64()
		block.FinalRate = uint32(v)
		return err
	case "rate_delta":
		v, err := u64()
		block.RateDelta = uint32(v)
		return err
	case "accelerate_until":
		v, err := u64()
		block.AccelerateUntil = uint32(v)
		return err
	case "decelerate_after":
		v, err := u64()
		block.DecelerateAfter = uint32(v)
		return err
	case "intensity":
		v, err := u64()
		block.NominalLaserIntensity = uint8(v)
		return err
	case "pixel_steps":
		v, err := u64()
		block.PixelSteps = uint32(v)
		return err
	default:
		return fmt.Errorf("unknown block field %q", key)
	}
}
