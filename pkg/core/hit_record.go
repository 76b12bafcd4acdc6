package core

// HitRecord describes the nearest surface intersection found by a ray query
type HitRecord struct {
	EntityID       int     // index of the hit entity in the scene
	T              float64 // distance along the ray
	Position       Vec3
	Normal         Vec3 // interpolated shading normal, facing the ray origin
	GeometryNormal Vec3 // face normal, facing the ray origin
	Tangent        Vec3
	TexCoord       Vec2
	FrontFace      bool // ray arrived on the side the face winding points to
}
