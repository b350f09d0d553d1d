package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCourseID(t *testing.T) {
	tests := []struct {
		name     string
		courseID string
		want     ParsedCourseID
	}{
		{
			name:     "canonical id",
			courseID: "noc25-cs52",
			want:     ParsedCourseID{Type: "NOC25", Branch: "CS", Number: "52"},
		},
		{
			name:     "uppercase input normalised",
			courseID: "NOC25-EE61",
			want:     ParsedCourseID{Type: "NOC25", Branch: "EE", Number: "61"},
		},
		{
			name:     "no digits in branch segment",
			courseID: "noc25-me",
			want:     ParsedCourseID{Type: "NOC25", Branch: "ME", Number: ""},
		},
		{
			name:     "missing separator",
			courseID: "invalidnodash",
			want:     ParsedCourseID{Type: "INVALIDNODASH", Branch: "", Number: ""},
		},
		{
			name:     "digits only after separator",
			courseID: "noc25-1234",
			want:     ParsedCourseID{Type: "NOC25", Branch: "", Number: "1234"},
		},
		{
			name:     "empty input",
			courseID: "",
			want:     ParsedCourseID{},
		},
		{
			name:     "only the first separator splits",
			courseID: "noc25-cs-52",
			want:     ParsedCourseID{Type: "NOC25", Branch: "CS-", Number: "52"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseCourseID(tt.courseID))
		})
	}
}

func TestParsedCourseIDUnclassified(t *testing.T) {
	require.True(t, ParseCourseID("nodash").Unclassified())
	require.False(t, ParseCourseID("noc25-cs52").Unclassified())
}

func TestWeekOrdinal(t *testing.T) {
	require.Equal(t, 1, WeekOrdinal("Week 1"))
	require.Equal(t, 10, WeekOrdinal("Week 10 Assignment"))
	require.Equal(t, 0, WeekOrdinal("Orientation"))
	require.Equal(t, 0, WeekOrdinal(""))
}
