package core

// Logger is the logging surface the renderer depends on.
// *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Texture is an indexable 2D color source
type Texture interface {
	Sample(uv Vec2) Vec4
}
