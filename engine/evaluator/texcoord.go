package evaluator

import (
	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/chewxy/math32"
)

// BaseTexCoord selects the texture coordinate a stage starts from.
//
// Parameters:
//   - f: the frame block
//   - gen: the stage tcGen
//   - vectors: the injected S and T vectors of TCGenVector
//   - in: the interpolated vertex attributes
//
// Returns:
//   - [2]float32: the base coordinate
//   - bool: false if gen cannot be evaluated (TCGenBad, out of range, or environment
//     mapping on a stream without normals)
func BaseTexCoord(f *frame.GPUFrameUniforms, gen stage.TCGen, vectors *stage.GPUTCGenVectors, in Interpolants) ([2]float32, bool) {
	switch gen {
	case stage.TCGenIdentity, stage.TCGenTexture:
		return in.TexCoord, true
	case stage.TCGenLightmap:
		return LightmapTexCoord(in), true
	case stage.TCGenEnvMap:
		if !in.Format.Normals {
			return [2]float32{}, false
		}
		return EnvMapTexCoord(f, in.Position, in.Normal), true
	case stage.TCGenFog:
		if in.Screen {
			return [2]float32{0, 0.5}, true
		}
		return [2]float32{FogDepth(f, in.Position), 0.5}, true
	case stage.TCGenVector:
		return [2]float32{
			common.Dot3(in.Position, [3]float32{vectors.SVector[0], vectors.SVector[1], vectors.SVector[2]}),
			common.Dot3(in.Position, [3]float32{vectors.TVector[0], vectors.TVector[1], vectors.TVector[2]}),
		}, true
	case stage.TCGenBad:
		return [2]float32{}, false
	default:
		return [2]float32{}, false
	}
}

// LightmapTexCoord returns the lightmap coordinate, or the base texture coordinate when the
// vertex stream carries none.
func LightmapTexCoord(in Interpolants) [2]float32 {
	if in.Format.LightmapCoords {
		return in.LightmapCoord
	}
	return in.TexCoord
}

// EnvMapTexCoord reflects the direction toward the eye about the world-space normal and maps
// the reflection to s = 0.5 + r.y/2, t = 0.5 - r.z/2.
//
// Parameters:
//   - f: the frame block
//   - pos: object-space position
//   - normal: object-space normal
//
// Returns:
//   - [2]float32: the environment coordinate
func EnvMapTexCoord(f *frame.GPUFrameUniforms, pos, normal [3]float32) [2]float32 {
	w := common.TransformPoint(f.ModelMatrix[:], pos)
	world := [3]float32{w[0], w[1], w[2]}
	n := common.Normalize3(transformDirection(f.ModelMatrix[:], normal))
	viewer := common.Normalize3(common.Sub3(f.ViewOrigin, world))
	r := common.Reflect3(viewer, n)
	return [2]float32{0.5 + r[1]*0.5, 0.5 - r[2]*0.5}
}

// FogDepth returns the distance of pos in front of the eye along the view axis, in world units.
//
// Parameters:
//   - f: the frame block
//   - pos: object-space position
//
// Returns:
//   - float32: the view-space depth, positive in front of the eye
func FogDepth(f *frame.GPUFrameUniforms, pos [3]float32) float32 {
	w := common.TransformPoint(f.ModelMatrix[:], pos)
	v := common.TransformPoint(f.ViewMatrix[:], [3]float32{w[0], w[1], w[2]})
	return -v[2]
}

// ModifyTexCoord applies the stage transform TCModMat*uv + TCModOffset, then turbulence.
//
// Parameters:
//   - s: the stage block
//   - uv: the base coordinate
//
// Returns:
//   - [2]float32: the coordinate used to sample the color texture
func ModifyTexCoord(s *stage.GPUStageUniforms, uv [2]float32) [2]float32 {
	m := s.TCModMat
	out := [2]float32{
		m[0]*uv[0] + m[2]*uv[1] + s.TCModOffset[0],
		m[1]*uv[0] + m[3]*uv[1] + s.TCModOffset[1],
	}
	if s.TurbAmplitude != 0 {
		d := Turbulence(s)
		out[0] += d
		out[1] += d
	}
	return out
}

// Turbulence returns TurbAmplitude * sin(2*pi*TurbFrequency*(TurbTime + TurbPhase)), the offset
// added to each axis. The argument is wrapped into one period before the sine so large frame
// times keep their precision.
func Turbulence(s *stage.GPUStageUniforms) float32 {
	x := common.Fract(s.TurbFrequency * (s.TurbTime + s.TurbPhase))
	return s.TurbAmplitude * math32.Sin(2*math32.Pi*x)
}

func transformDirection(m []float32, d [3]float32) [3]float32 {
	return [3]float32{
		m[0]*d[0] + m[4]*d[1] + m[8]*d[2],
		m[1]*d[0] + m[5]*d[1] + m[9]*d[2],
		m[2]*d[0] + m[6]*d[1] + m[10]*d[2],
	}
}
