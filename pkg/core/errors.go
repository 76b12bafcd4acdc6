package core

import "errors"

var (
	ErrInvalidMesh     = errors.New("invalid mesh")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrEmptyMesh       = errors.New("mesh has no faces")
	ErrInvalidTexture  = errors.New("invalid texture")
	ErrInvalidLight    = errors.New("invalid light")
	ErrNoLights        = errors.New("scene has no lights")
	ErrUnknownScene    = errors.New("unknown scene")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrUnnormalized    = errors.New("vector is not normalized")
	ErrSceneFrozen     = errors.New("scene is frozen")
	ErrSceneNotFrozen  = errors.New("scene is not frozen")
)
