package geodesic

import (
	"math"
	"testing"

	"github.com/earth-genome/quadcluster"
)

var (
	flindersPeak = quadcluster.LatLng{
		Lat: -(37 + 57.0/60 + 3.72030/3600),
		Lng: 144 + 25.0/60 + 29.52440/3600,
	}
	buninyong = quadcluster.LatLng{
		Lat: -(37 + 39.0/60 + 10.15610/3600),
		Lng: 143 + 55.0/60 + 35.38390/3600,
	}
)

func TestInverseFlindersPeak(t *testing.T) {
	r := Inverse(flindersPeak, buninyong)
	if !r.Converged {
		t.Fatalf("did not converge after %d iterations", r.Iterations)
	}
	if math.Abs(r.Distance-54972.271) > 0.01 {
		t.Errorf("distance = %.4f, want 54972.271", r.Distance)
	}
	wantInitial := 306 + 52.0/60 + 5.37/3600
	if got := normalize(r.InitialBearing); math.Abs(got-wantInitial) > 1e-5 {
		t.Errorf("initial bearing = %.8f, want %.8f", got, wantInitial)
	}
	wantFinal := 307 + 10.0/60 + 25.07/3600
	if got := normalize(r.FinalBearing); math.Abs(got-wantFinal) > 1e-5 {
		t.Errorf("final bearing = %.8f, want %.8f", got, wantFinal)
	}
	t.Logf("converged after %d iterations", r.Iterations)
}

func TestInverseSamePoint(t *testing.T) {
	ll := quadcluster.LatLng{Lat: 51.5, Lng: -0.12}
	r := Inverse(ll, ll)
	if r.Distance != 0 {
		t.Errorf("distance to itself = %f", r.Distance)
	}
	if !r.Converged {
		t.Error("coincident points should converge")
	}
}

func TestInverseMeridian(t *testing.T) {
	// one degree of latitude at the equator
	r := Inverse(quadcluster.LatLng{Lat: 0, Lng: 10}, quadcluster.LatLng{Lat: 1, Lng: 10})
	if math.Abs(r.Distance-110574.4) > 1 {
		t.Errorf("distance = %f, want about 110574", r.Distance)
	}
	if math.Abs(r.InitialBearing) > 1e-9 {
		t.Errorf("bearing = %f, want 0", r.InitialBearing)
	}
}

func TestInverseIterationCap(t *testing.T) {
	r := Inverse(quadcluster.LatLng{Lat: 0, Lng: 0}, quadcluster.LatLng{Lat: 0.5, Lng: 179.7})
	if r.Iterations > MaxIterations {
		t.Fatalf("ran %d iterations, cap is %d", r.Iterations, MaxIterations)
	}
	if !r.Converged && r.Iterations != MaxIterations {
		t.Errorf("gave up after %d iterations without converging", r.Iterations)
	}
	t.Logf("nearly antipodal: distance=%f converged=%v iterations=%d", r.Distance, r.Converged, r.Iterations)
}

func TestDirectFlindersPeak(t *testing.T) {
	bearing := 306 + 52.0/60 + 5.37/3600
	got := Direct(flindersPeak, bearing, 54972.271)
	if math.Abs(got.Lat-buninyong.Lat) > 1e-6 || math.Abs(got.Lng-buninyong.Lng) > 1e-6 {
		t.Errorf("Direct = %v, want %v", got, buninyong)
	}
}

func TestDirectInvertsInverse(t *testing.T) {
	pairs := [][2]quadcluster.LatLng{
		{{Lat: 51.507222, Lng: -0.1275}, {Lat: 48.8566, Lng: 2.3522}},
		{{Lat: 39.5476, Lng: -76.3338}, {Lat: 39.5312, Lng: -76.3132}},
		{{Lat: -33.8651, Lng: 151.2099}, {Lat: -36.8485, Lng: 174.7633}},
		{{Lat: 10, Lng: 179.5}, {Lat: 10.5, Lng: -179.5}},
	}
	for _, p := range pairs {
		r := Inverse(p[0], p[1])
		got := Direct(p[0], r.InitialBearing, r.Distance)
		if d := Distance(got, p[1]); d > 1e-3 {
			t.Errorf("Direct from %v missed %v by %f m", p[0], p[1], d)
		}
	}
}

func TestDirectZeroDistance(t *testing.T) {
	ll := quadcluster.LatLng{Lat: 45, Lng: 7}
	got := Direct(ll, 123, 0)
	if math.Abs(got.Lat-ll.Lat) > 1e-12 || math.Abs(got.Lng-ll.Lng) > 1e-12 {
		t.Errorf("Direct with zero distance moved to %v", got)
	}
}

func TestHaversineClose(t *testing.T) {
	london := quadcluster.LatLng{Lat: 51.507222, Lng: -0.1275}
	paris := quadcluster.LatLng{Lat: 48.8566, Lng: 2.3522}
	h := Haversine(london, paris)
	v := Distance(london, paris)
	if math.Abs(h-v)/v > 0.005 {
		t.Errorf("haversine %f and vincenty %f differ by more than 0.5%%", h, v)
	}
}

func normalize(deg float64) float64 {
	return math.Mod(deg+360, 360)
}
