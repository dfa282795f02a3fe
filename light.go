package scenekit

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeAmbient     LightType = 3
)

// LightComponent is the ECS component for lights. Directional lights shine from
// the entity position towards Target.
type LightComponent struct {
	Type      LightType
	Color     Color
	Intensity float32
	Range     float32 // point lights; 0 means no falloff cutoff
	Target    [3]float32

	// Shadow parameters are carried for scene fidelity; the software renderer
	// does not cast shadows.
	CastShadow    bool
	ShadowMapSize int
	ShadowFar     float32
}

func AmbientLight(color Color, intensity float32) LightComponent {
	return LightComponent{Type: LightTypeAmbient, Color: color, Intensity: intensity}
}

func DirectionalLight(color Color, intensity float32) LightComponent {
	return LightComponent{Type: LightTypeDirectional, Color: color, Intensity: intensity}
}

func PointLight(color Color, intensity, rng float32) LightComponent {
	return LightComponent{Type: LightTypePoint, Color: color, Intensity: intensity, Range: rng}
}
