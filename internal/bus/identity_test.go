package bus

import "testing"

type valueOwner struct{}

func (valueOwner) Handle(*dummyEvent) error { return nil }

func handleTopLevel(*dummyEvent) error { return nil }

func TestOwnerName(t *testing.T) {
	tests := []struct {
		name string
		fn   any
		want string
	}{
		{"pointer receiver", (&dummySubscriber{}).HandleDummy, "dummySubscriber"},
		{"value receiver", valueOwner{}.Handle, "valueOwner"},
		{"top level function", handleTopLevel, ""},
		{"closure", func(*dummyEvent) error { return nil }, ""},
		{"not a function", 42, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ownerName(tt.fn); got != tt.want {
				t.Errorf("ownerName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventName(t *testing.T) {
	if got := EventName(&dummyEvent{}); got != "dummyEvent" {
		t.Errorf("EventName(*dummyEvent) = %q, want dummyEvent", got)
	}
	if got := EventName(followEvent{}); got != "followEvent" {
		t.Errorf("EventName(followEvent) = %q, want followEvent", got)
	}
}

func TestStripTypeArgs(t *testing.T) {
	tests := map[string]string{
		"bus.(*owner[...]).Handle":          "bus.(*owner).Handle",
		"bus.owner[go.shape.int].Handle":    "bus.owner.Handle",
		"bus.(*owner[map[string]int]).Call": "bus.(*owner).Call",
		"bus.plain":                         "bus.plain",
	}
	for in, want := range tests {
		if got := stripTypeArgs(in); got != want {
			t.Errorf("stripTypeArgs(%q) = %q, want %q", in, got, want)
		}
	}
}
