package model

import "testing"

func TestProgressStatus_IsFinished(t *testing.T) {
	tests := []struct {
		status   ProgressStatus
		expected bool
	}{
		{ProgressStatusStarting, false},
		{ProgressStatusDownloading, false},
		{ProgressStatusPostProcessing, false},
		{ProgressStatusFinished, true},
		{ProgressStatusError, true},
	}

	for _, test := range tests {
		result := test.status.IsFinished()
		if result != test.expected {
			t.Errorf("ProgressStatus(%s).IsFinished() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestParseProgressStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected ProgressStatus
	}{
		{"downloading", ProgressStatusDownloading},
		{"finished", ProgressStatusFinished},
		{"post_processing", ProgressStatusPostProcessing},
		{"postprocessing", ProgressStatusPostProcessing},
		{"completed", ProgressStatusFinished},
		{"something", ProgressStatus("something")},
	}

	for _, test := range tests {
		if got := ParseProgressStatus(test.input); got != test.expected {
			t.Errorf("ParseProgressStatus(%q) = %s, expected %s", test.input, got, test.expected)
		}
	}
}
