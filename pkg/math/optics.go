package math

import "math"

// Reflect mirrors direction d about the unit normal n: r = d - 2(d·n)n
func Reflect(d, n Vec2) Vec2 {
	return d.Sub(n.Mul(2 * d.Dot(n)))
}

// Refract bends the unit direction d through a boundary with unit normal n facing
// against d. eta is the ratio n_incident / n_transmitted. Returns false when the
// discriminant is negative (total internal reflection).
func Refract(d, n Vec2, eta float64) (Vec2, bool) {
	cosI := -d.Dot(n)
	k := 1 - eta*eta*(1-cosI*cosI)
	if k < 0 {
		return Vec2{}, false
	}
	return d.Mul(eta).Add(n.Mul(eta*cosI - math.Sqrt(k))), true
}

// Schlick approximates the Fresnel reflectance for the given incident cosine and
// refraction ratio.
func Schlick(cosine, eta float64) float64 {
	r0 := (1 - eta) / (1 + eta)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// BeerLambert returns the per-channel transmittance exp(-sigma*distance) after
// travelling distance through a medium with the given extinction coefficients.
func BeerLambert(extinction Color, distance float64) Color {
	if distance <= 0 {
		return Gray(1)
	}
	return Color{
		R: math.Exp(-extinction.R * distance),
		G: math.Exp(-extinction.G * distance),
		B: math.Exp(-extinction.B * distance),
	}
}
