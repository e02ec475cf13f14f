package observation

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MatrixVersion gates decoding of the camera-matrix tail that follows the
// depth segment. The tail is not consumed unless a version is requested.
type MatrixVersion int

const (
	MatricesNone MatrixVersion = iota
	// MatricesV1 is the modelview matrix followed by the projection
	// matrix, each 16 float32 values in OpenGL column-major order.
	MatricesV1
)

func (v MatrixVersion) String() string {
	switch v {
	case MatricesNone:
		return "none"
	case MatricesV1:
		return "v1"
	default:
		return fmt.Sprintf("MatrixVersion(%d)", int(v))
	}
}

// ParseMatrixVersion maps a config string to a MatrixVersion.
func ParseMatrixVersion(s string) (MatrixVersion, error) {
	switch s {
	case "", "none":
		return MatricesNone, nil
	case "v1":
		return MatricesV1, nil
	default:
		return MatricesNone, fmt.Errorf("unknown camera matrix version %q", s)
	}
}

// CameraMatrices holds the render transforms captured with a depth frame.
type CameraMatrices struct {
	ModelView  *mat.Dense
	Projection *mat.Dense
}

func identityMatrices() *CameraMatrices {
	id := func() *mat.Dense {
		m := mat.NewDense(4, 4, nil)
		for i := 0; i < 4; i++ {
			m.Set(i, i, 1)
		}
		return m
	}
	return &CameraMatrices{ModelView: id(), Projection: id()}
}

// decodeMatrices reads both matrices from data, which must hold exactly
// MatrixSegmentBytes.
func decodeMatrices(data []byte, order binary.ByteOrder) *CameraMatrices {
	read := func(b []byte) *mat.Dense {
		m := mat.NewDense(4, 4, nil)
		for i := 0; i < MatrixElements; i++ {
			v := math.Float32frombits(order.Uint32(b[i*4:]))
			m.Set(i%4, i/4, float64(v))
		}
		return m
	}
	half := MatrixSegmentBytes / 2
	return &CameraMatrices{
		ModelView:  read(data[:half]),
		Projection: read(data[half:MatrixSegmentBytes]),
	}
}

// ViewProjection returns Projection × ModelView.
func (c *CameraMatrices) ViewProjection() *mat.Dense {
	var out mat.Dense
	out.Mul(c.Projection, c.ModelView)
	return &out
}
