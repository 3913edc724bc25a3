package leads

import "testing"

func TestEstimateProjectValue(t *testing.T) {
	tests := []struct {
		name    string
		service string
		details map[string]string
		want    EstimatedValue
	}{
		{"roof replacement", "roofing", map[string]string{"roofingService": "replacement"}, ValueLarge},
		{"roof rejuvenation", "roofing", map[string]string{"roofingService": "rejuvenation"}, ValueMedium},
		{"roof repair", "roofing", map[string]string{"roofingService": "repair"}, ValueSmall},
		{"flooring large", "flooring", map[string]string{"squareFootage": "1500"}, ValueLarge},
		{"flooring boundary 1000", "flooring", map[string]string{"squareFootage": "1000"}, ValueMedium},
		{"flooring medium", "flooring", map[string]string{"squareFootage": "501"}, ValueMedium},
		{"flooring boundary 500", "flooring", map[string]string{"squareFootage": "500"}, ValueSmall},
		{"flooring unparsable", "flooring", map[string]string{"squareFootage": "lots"}, ValueSmall},
		{"flooring thousands separator", "flooring", map[string]string{"squareFootage": "1,200"}, ValueSmall},
		{"flooring trailing unit", "flooring", map[string]string{"squareFootage": "1200 sqft"}, ValueLarge},
		{"windows large", "windows", map[string]string{"windowCount": "11"}, ValueLarge},
		{"windows medium", "windows", map[string]string{"windowCount": "6"}, ValueMedium},
		{"windows small", "windows", map[string]string{"windowCount": "5"}, ValueSmall},
		{"plumbing repipe", "plumbing", map[string]string{"issue": "repiping"}, ValueLarge},
		{"plumbing water heater", "plumbing", map[string]string{"issue": "water-heater"}, ValueMedium},
		{"electrical panel", "electrical", map[string]string{"electricalService": "panel-upgrade"}, ValueLarge},
		{"electrical ev", "electrical", map[string]string{"electricalService": "ev-charger"}, ValueMedium},
		{"hvac replacement", "hvac", map[string]string{"hvacService": "replacement"}, ValueLarge},
		{"hvac repair", "hvac", map[string]string{"hvacService": "repair"}, ValueMedium},
		{"handyman few", "handyman", map[string]string{"handymanServices": "furniture, tv-mount"}, ValueSmall},
		{"handyman many", "handyman", map[string]string{"handymanServices": "furniture, tv-mount, drywall, doors, shelving"}, ValueMedium},
		{"painting exterior", "painting", map[string]string{"paintingScope": "exterior"}, ValueLarge},
		{"painting interior many rooms", "painting", map[string]string{"paintingScope": "interior", "roomCount": "6"}, ValueMedium},
		{"painting interior few rooms", "painting", map[string]string{"paintingScope": "interior", "roomCount": "2"}, ValueSmall},
		{"unknown service", "pools", map[string]string{"size": "huge"}, ValueSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateProjectValue(tt.service, tt.details); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestLeadingInt(t *testing.T) {
	cases := map[string]int{"": 0, "42": 42, " 7 rooms": 7, "-3": -3, "+8": 8, "x9": 0, "1,200": 1}
	for in, want := range cases {
		if got := leadingInt(in); got != want {
			t.Errorf("leadingInt(%q) = %d, want %d", in, got, want)
		}
	}
}
