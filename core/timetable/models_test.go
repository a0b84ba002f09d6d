package timetable

import "testing"

func TestEntryOverlaps(t *testing.T) {
	slot := func(start, end string) Entry {
		return Entry{StartTime: start, EndTime: end}
	}

	tests := []struct {
		name string
		a, b Entry
		want bool
	}{
		{name: "identical", a: slot("09:00", "10:00"), b: slot("09:00", "10:00"), want: true},
		{name: "partial overlap", a: slot("09:00", "10:00"), b: slot("09:30", "10:30"), want: true},
		{name: "contained", a: slot("09:00", "12:00"), b: slot("10:00", "11:00"), want: true},
		{name: "touching end to start", a: slot("09:00", "10:00"), b: slot("10:00", "11:00"), want: false},
		{name: "touching start to end", a: slot("10:00", "11:00"), b: slot("09:00", "10:00"), want: false},
		{name: "disjoint", a: slot("09:00", "10:00"), b: slot("14:00", "15:00"), want: false},
		{name: "one minute overlap", a: slot("09:00", "10:01"), b: slot("10:00", "11:00"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// overlap is symmetric
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEntryValidate(t *testing.T) {
	valid := NewEntry{
		SectionID: "sec1",
		SubjectID: "sub1",
		FacultyID: "fac1",
		Weekday:   "Monday",
		StartTime: "09:00",
		EndTime:   "10:00",
	}

	tests := []struct {
		name    string
		mutate  func(ne *NewEntry)
		wantErr bool
	}{
		{name: "valid", mutate: func(ne *NewEntry) {}},
		{name: "bad weekday", mutate: func(ne *NewEntry) { ne.Weekday = "Sunday" }, wantErr: true},
		{name: "unpadded time", mutate: func(ne *NewEntry) { ne.StartTime = "9:00" }, wantErr: true},
		{name: "end before start", mutate: func(ne *NewEntry) { ne.StartTime = "10:00"; ne.EndTime = "09:00" }, wantErr: true},
		{name: "zero length", mutate: func(ne *NewEntry) { ne.EndTime = ne.StartTime }, wantErr: true},
		{name: "missing section", mutate: func(ne *NewEntry) { ne.SectionID = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ne := valid
			tt.mutate(&ne)
			if err := ne.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
