// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"math"
	"testing"
)

// =============================================================================
// NUMBER FORMATTING TESTS
// =============================================================================

func TestItoa(t *testing.T) {
	cases := map[int]string{
		0:             "0",
		7:             "7",
		-42:           "-42",
		1048576:       "1048576",
		math.MinInt64: "-9223372036854775808",
		math.MaxInt64: "9223372036854775807",
	}

	for n, want := range cases {
		if got := itoa(n); got != want {
			t.Errorf("itoa(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestCommas(t *testing.T) {
	cases := map[int]string{
		0:             "0",
		999:           "999",
		1000:          "1,000",
		53280:         "53,280",
		123456:        "123,456",
		1234567:       "1,234,567",
		2147483647:    "2,147,483,647",
		-500:          "-500",
		-1000:         "-1,000",
		-9876543:      "-9,876,543",
		math.MinInt64: "-9,223,372,036,854,775,808",
		math.MaxInt64: "9,223,372,036,854,775,807",
	}

	for n, want := range cases {
		if got := commas(n); got != want {
			t.Errorf("commas(%d) = %q, want %q", n, got, want)
		}
	}
}
