package shader

import (
	_ "embed"
)

// stageEvalSource holds the stage evaluation functions shared by the stage shaders.
//
//go:embed assets/stage_eval.wgsl
var stageEvalSource string

// SurfaceStageSource is the annotated WGSL of the stage shader for world surfaces.
//
//go:embed assets/surface_stage.wgsl
var SurfaceStageSource string

// UIStageSource is the annotated WGSL of the stage shader for 2D geometry.
//
//go:embed assets/ui_stage.wgsl
var UIStageSource string
