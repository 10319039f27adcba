package scene

import (
	"github.com/charmbracelet/harmonica"
)

// Turntable spins objects about the world Y axis. The yaw rate eases
// toward Speed while running and back to zero when stopped, driven by a
// harmonica spring so starts and stops are smooth.
type Turntable struct {
	// Angle is the accumulated yaw in radians.
	Angle float64
	// Velocity is the current yaw change per frame in radians.
	Velocity float64
	// Speed is the target yaw rate in radians per second.
	Speed   float64
	Running bool

	fps    int
	spring harmonica.Spring
	accel  float64 // spring velocity of Velocity
}

// NewTurntable creates a running turntable stepped fps times per second.
// frequency and damping configure the spring; damping 1 is critically
// damped and never overshoots Speed.
func NewTurntable(fps int, speed, frequency, damping float64) *Turntable {
	return &Turntable{
		Speed:   speed,
		Running: true,
		fps:     fps,
		spring:  harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
	}
}

// Toggle starts or stops the rotation.
func (t *Turntable) Toggle() {
	t.Running = !t.Running
}

// Reset zeroes the angle and velocity.
func (t *Turntable) Reset() {
	t.Angle = 0
	t.Velocity = 0
	t.accel = 0
}

// target returns the per-frame yaw rate Velocity is easing toward.
func (t *Turntable) target() float64 {
	if !t.Running || t.fps <= 0 {
		return 0
	}
	return t.Speed / float64(t.fps)
}

// Step advances one frame and returns the new angle.
func (t *Turntable) Step() float64 {
	t.Angle += t.Velocity
	t.Velocity, t.accel = t.spring.Update(t.Velocity, t.accel, t.target())
	return t.Angle
}
