// Package geodesic solves the inverse and direct geodesic problems on the
// WGS84 ellipsoid with Vincenty's iterative formulae.
//
// See T. Vincenty, "Direct and Inverse Solutions of Geodesics on the
// Ellipsoid with Application of Nested Equations", Survey Review, 1975.
package geodesic

import (
	"math"

	"github.com/earth-genome/quadcluster"
	"github.com/paulmach/orb/geo"
)

const (
	SemiMajorAxis = 6378137.0
	SemiMinorAxis = 6356752.3142
	Flattening    = (SemiMajorAxis - SemiMinorAxis) / SemiMajorAxis

	MaxIterations = 20
	Tolerance     = 1e-12
)

// Result of the inverse problem. When the iteration did not converge within
// MaxIterations the values of the last iterate are returned and Converged
// is false; this happens for nearly antipodal points.
type Result struct {
	Distance       float64 // meters
	InitialBearing float64 // degrees from north, (-180, 180]
	FinalBearing   float64 // degrees from north, (-180, 180]
	Iterations     int
	Converged      bool
}

// Inverse computes the distance and the bearings between two positions.
func Inverse(from, to quadcluster.LatLng) Result {
	const (
		a = SemiMajorAxis
		b = SemiMinorAxis
		f = Flattening
	)
	aSqMinusBSqOverBSq := (a*a - b*b) / (b * b)

	lat1, lon1 := toRad(from.Lat), toRad(from.Lng)
	lat2, lon2 := toRad(to.Lat), toRad(to.Lng)

	L := lon2 - lon1
	U1 := math.Atan((1 - f) * math.Tan(lat1))
	U2 := math.Atan((1 - f) * math.Tan(lat2))

	sinU1, cosU1 := math.Sincos(U1)
	sinU2, cosU2 := math.Sincos(U2)
	cosU1cosU2 := cosU1 * cosU2
	sinU1sinU2 := sinU1 * sinU2

	var (
		A, sigma, deltaSigma         float64
		sinSigma, cosSigma           float64
		sinLambda, cosLambda, cos2SM float64
		res                          Result
	)

	lambda := L
	for res.Iterations < MaxIterations {
		res.Iterations++
		prev := lambda

		sinLambda, cosLambda = math.Sincos(lambda)
		t1 := cosU2 * sinLambda
		t2 := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(t1*t1 + t2*t2)
		cosSigma = sinU1sinU2 + cosU1cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := 0.0
		if sinSigma != 0 {
			sinAlpha = cosU1cosU2 * sinLambda / sinSigma
		}
		cosSqAlpha := 1 - sinAlpha*sinAlpha
		cos2SM = 0.0
		if cosSqAlpha != 0 {
			cos2SM = cosSigma - 2*sinU1sinU2/cosSqAlpha
		}

		uSq := cosSqAlpha * aSqMinusBSqOverBSq
		A = 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
		B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
		C := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
		cos2SMSq := cos2SM * cos2SM
		deltaSigma = B * sinSigma * (cos2SM + B/4*(cosSigma*(-1+2*cos2SMSq)-
			B/6*cos2SM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SMSq)))

		lambda = L + (1-C)*f*sinAlpha*(sigma+C*sinSigma*(cos2SM+C*cosSigma*(-1+2*cos2SMSq)))

		if d := math.Abs(lambda - prev); d == 0 || d < Tolerance*math.Abs(lambda) {
			res.Converged = true
			break
		}
	}

	res.Distance = b * A * (sigma - deltaSigma)
	res.InitialBearing = toDeg(math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda))
	res.FinalBearing = toDeg(math.Atan2(cosU1*sinLambda, -sinU1*cosU2+cosU1*sinU2*cosLambda))
	return res
}

// Distance returns the ellipsoidal distance in meters.
func Distance(from, to quadcluster.LatLng) float64 {
	return Inverse(from, to).Distance
}

// Direct returns the position reached by travelling distance meters from
// from along the initial bearing (degrees from north).
func Direct(from quadcluster.LatLng, bearing, distance float64) quadcluster.LatLng {
	const (
		a = SemiMajorAxis
		b = SemiMinorAxis
		f = Flattening
	)

	sinAlpha1, cosAlpha1 := math.Sincos(toRad(bearing))

	tanU1 := (1 - f) * math.Tan(toRad(from.Lat))
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1

	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha
	uSq := cosSqAlpha * (a*a - b*b) / (b * b)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	var sinSigma, cosSigma, cos2SM float64
	sigma := distance / (b * A)
	for i := 0; i < MaxIterations; i++ {
		cos2SM = math.Cos(2*sigma1 + sigma)
		sinSigma, cosSigma = math.Sincos(sigma)
		deltaSigma := B * sinSigma * (cos2SM + B/4*(cosSigma*(-1+2*cos2SM*cos2SM)-
			B/6*cos2SM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SM*cos2SM)))
		prev := sigma
		sigma = distance/(b*A) + deltaSigma
		if math.Abs(sigma-prev) < Tolerance {
			break
		}
	}
	cos2SM = math.Cos(2*sigma1 + sigma)
	sinSigma, cosSigma = math.Sincos(sigma)

	x := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	lat2 := math.Atan2(sinU1*cosSigma+cosU1*sinSigma*cosAlpha1, (1-f)*math.Sqrt(sinAlpha*sinAlpha+x*x))
	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	C := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
	L := lambda - (1-C)*f*sinAlpha*(sigma+C*sinSigma*(cos2SM+C*cosSigma*(-1+2*cos2SM*cos2SM)))

	// normalise to [-180, 180)
	lon2 := math.Mod(toRad(from.Lng)+L+3*math.Pi, 2*math.Pi) - math.Pi

	return quadcluster.LatLng{Lat: toDeg(lat2), Lng: toDeg(lon2)}
}

// Haversine is the great-circle distance in meters on a spherical earth.
// Cheaper than Inverse and good to a few tenths of a percent.
func Haversine(from, to quadcluster.LatLng) float64 {
	return geo.DistanceHaversine(from.Point(), to.Point())
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
