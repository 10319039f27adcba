// Package brdf implements the analytic reflectance terms used by the shader.
//
// Direction arguments follow one convention throughout: l is the incident
// light direction (travelling from the light towards the surface) for the
// Phong terms, and the direction towards the light for the microfacet
// terms; v points from the surface towards the eye; n is the unit surface
// normal. All vectors must be normalized.
package brdf

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softras/pkg/math3d"
)

// Lambert returns the diffuse reflectance kd * cd / π.
func Lambert(kd float64, cd colorful.Color) colorful.Color {
	return Scale(cd, kd/math.Pi)
}

// LambertColor is Lambert with a per-channel reflection coefficient.
func LambertColor(kd, cd colorful.Color) colorful.Color {
	return Scale(Mul(kd, cd), 1/math.Pi)
}

// Phong returns the scalar Phong specular lobe ks * cos(α)^exp, where α is
// the angle between v and the reflection of the incident direction l about n.
func Phong(ks, exp float64, l, v, n math3d.Vec3) float64 {
	r := l.Reflect(n).Normalize()
	cosA := max(0, v.Dot(r))
	if cosA <= 0 {
		return 0
	}
	return ks * math.Pow(cosA, exp)
}

// PhongColor is Phong tinted by a specular color.
func PhongColor(ks colorful.Color, exp float64, l, v, n math3d.Vec3) colorful.Color {
	return Scale(ks, Phong(1, exp, l, v, n))
}

// FresnelSchlick approximates the Fresnel reflectance for half vector h and
// view direction v given the base reflectivity f0.
func FresnelSchlick(h, v math3d.Vec3, f0 colorful.Color) colorful.Color {
	vh := max(v.Dot(h), 0)
	if vh == 0 {
		return f0
	}
	k := math.Pow(1-vh, 5)
	return colorful.Color{
		R: f0.R + (1-f0.R)*k,
		G: f0.G + (1-f0.G)*k,
		B: f0.B + (1-f0.B)*k,
	}
}

// NormalDistributionGGX is the Trowbridge-Reitz GGX distribution with
// α = roughness².
func NormalDistributionGGX(n, h math3d.Vec3, roughness float64) float64 {
	a2 := roughness * roughness
	nh := n.Dot(h)
	d := nh*nh*(a2-1) + 1
	return a2 / (math.Pi * d * d)
}

// GeometrySchlickGGX is the Schlick-GGX masking term for direct lighting.
func GeometrySchlickGGX(n, v math3d.Vec3, roughness float64) float64 {
	nv := max(n.Dot(v), 0)
	k := (roughness + 1) * (roughness + 1) / 8
	return nv / (nv*(1-k) + k)
}

// GeometrySmith combines masking towards v and shadowing towards l.
func GeometrySmith(n, v, l math3d.Vec3, roughness float64) float64 {
	return GeometrySchlickGGX(n, v, roughness) * GeometrySchlickGGX(n, l, roughness)
}

// CookTorrance returns the microfacet specular term D·F·G / (4 (n·v)(n·l)).
// l points towards the light. Grazing or back-facing configurations yield
// black.
func CookTorrance(n, v, l math3d.Vec3, f0 colorful.Color, roughness float64) colorful.Color {
	nv := n.Dot(v)
	nl := n.Dot(l)
	if nv <= 0 || nl <= 0 {
		return Black
	}

	h := v.Add(l).Normalize()
	d := NormalDistributionGGX(n, h, roughness)
	g := GeometrySmith(n, v, l, roughness)
	f := FresnelSchlick(h, v, f0)
	return Scale(f, d*g/(4*nv*nl))
}
