package geo

import "testing"

func TestTransformRoundTrip(t *testing.T) {
	c := NewCoordinate(37.6173, 55.7558) // Moscow, EPSG:4326
	orig := c
	if err := c.Transform(EPSG3857); err != nil {
		t.Fatalf("Transform to 3857: %v", err)
	}
	if err := c.Transform(EPSG4326); err != nil {
		t.Fatalf("Transform back to 4326: %v", err)
	}
	d, err := Distance(orig, c)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if d > 0.01 {
		t.Errorf("round trip drifted %g m, want <= 1cm", d)
	}
}

func TestTransformIdentity(t *testing.T) {
	c := NewCoordinate(10, 20)
	before := c
	if err := c.Transform(EPSG4326); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if c != before {
		t.Errorf("identity transform changed coordinate: %+v != %+v", c, before)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := NewCoordinate(37.6, 55.7)
	b := NewCoordinate(30.3, 59.9) // St. Petersburg
	d1, err := Distance(a, b)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	d2, err := Distance(b, a)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if d1 != d2 {
		t.Errorf("distance not symmetric: %g != %g", d1, d2)
	}
	// Moscow-Petersburg great circle distance is roughly 635 km.
	if d1 < 600000 || d1 > 700000 {
		t.Errorf("distance %g m out of expected range", d1)
	}
}
