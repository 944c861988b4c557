package transport

import "testing"

func TestAddressString(t *testing.T) {
	a := NewAddress("10.0.0.7", 50051)
	if got := a.String(); got != "10.0.0.7:50051" {
		t.Errorf("String() = %s", got)
	}

	v6 := NewAddress("::1", 50051)
	if got := v6.String(); got != "[::1]:50051" {
		t.Errorf("ipv6 String() = %s", got)
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    UnresolvedAddress
		wantErr bool
	}{
		{"localhost:50051", UnresolvedAddress{Host: "localhost", Port: 50051}, false},
		{"10.0.0.1:1", UnresolvedAddress{Host: "10.0.0.1", Port: 1}, false},
		{"noport", UnresolvedAddress{}, true},
		{"host:notaport", UnresolvedAddress{}, true},
		{"host:0", UnresolvedAddress{}, true},
		{"host:70000", UnresolvedAddress{}, true},
	}

	for _, tt := range tests {
		got, err := ParseAddress(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAddress(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseAddress(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestAddressIsZero(t *testing.T) {
	if !(UnresolvedAddress{}).IsZero() {
		t.Error("zero value should report IsZero")
	}
	if NewAddress("h", 1).IsZero() {
		t.Error("non-zero address should not report IsZero")
	}
}
