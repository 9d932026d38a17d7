package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"resume-agent-go/internal/types"
)

func TestNormalizeWorkPeriod(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"to分隔", "Jan 2020 to Mar 2022", "Jan 2020 - Mar 2022"},
		{"大写TO", "Jan 2020 TO Mar 2022", "Jan 2020 - Mar 2022"},
		{"en-dash", "Jan 2020 – Mar 2022", "Jan 2020 - Mar 2022"},
		{"em-dash", "Jan 2020—Mar 2022", "Jan 2020 - Mar 2022"},
		{"紧贴横线", "Jan 2020-Mar 2022", "Jan 2020 - Mar 2022"},
		{"月份全称", "January 2020 - September 2022", "Jan 2020 - Sep 2022"},
		{"Present结尾", "Jan 2020 - Present", "Jan 2020 - Till Date"},
		{"Current结尾", "Mar 2021 - current", "Mar 2021 - Till Date"},
		{"已是规范形式", "Jan 2020 - Mar 2022", "Jan 2020 - Mar 2022"},
		{"空串", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeWorkPeriod(tc.input))
		})
	}
}

// 归一化必须幂等：规范形式再跑一遍不变
func TestNormalizeWorkPeriodIdempotent(t *testing.T) {
	inputs := []string{
		"Jan 2020 to Mar 2022",
		"January 2015 – Present",
		"2018 - 2020",
		"Mar 2021 - Till Date",
	}
	for _, input := range inputs {
		once := NormalizeWorkPeriod(input)
		assert.Equal(t, once, NormalizeWorkPeriod(once), "input: %q", input)
	}
}

func TestNormalizeLocation(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"州全称", "Dallas, Texas", "Dallas, TX"},
		{"州全称小写", "dallas, texas", "dallas, TX"},
		{"缺逗号", "Dallas TX", "Dallas, TX"},
		{"逗号无空格", "Dallas,TX", "Dallas, TX"},
		{"逗号多空格", "Dallas , TX", "Dallas, TX"},
		{"竖线分隔", "Dallas| TX", "Dallas, TX"},
		{"两词州名", "Jersey City, New Jersey", "Jersey City, NJ"},
		{"多余空白", "  New   York,   New York ", "New York, NY"},
		{"已是规范形式", "Dallas, TX", "Dallas, TX"},
		{"空串", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeLocation(tc.input))
		})
	}
}

func TestStandardizeDegree(t *testing.T) {
	cases := map[string]string{
		"BTech":                  "BS",
		"B.Tech":                 "BS",
		"BE":                     "BS",
		"Bachelor of Technology": "BS",
		"Bachelors in Science":   "BS",
		"MTech":                  "MS",
		"M.Tech":                 "MS",
		"ME":                     "MS",
		"Master of Science":      "MS",
		"MBA":                    "MBA",
		"PhD":                    "PhD",
		"Doctorate":              "PhD",
		"JD":                     "JD",
		"AA":                     "AA",
		"Diploma in Welding":     "Diploma in Welding",
		"":                       "",
	}

	for input, want := range cases {
		assert.Equal(t, want, StandardizeDegree(input), "input: %q", input)
	}
}

func TestSortEducation(t *testing.T) {
	entries := []types.EducationEntry{
		{Degree: "PhD", Date: "May 2020"},
		{Degree: "MTech", Date: "May 2014"},
		{Degree: "BTech", Date: "May 2012"},
		{Degree: "AS", Date: "May 2010"},
	}

	SortEducation(entries)

	degrees := make([]string, 0, len(entries))
	for _, e := range entries {
		degrees = append(degrees, e.Degree)
	}
	// 升序：副学士 -> 学士 -> 硕士 -> 博士
	assert.Equal(t, []string{"AS", "BS", "MS", "PhD"}, degrees)
}

func TestSortEducationDateTiebreak(t *testing.T) {
	entries := []types.EducationEntry{
		{Degree: "MS", Date: "Jun 2018"},
		{Degree: "MBA", Date: "Jun 2015"},
	}

	SortEducation(entries)

	// 同层级学位按较早年份在前
	assert.Equal(t, "MBA", entries[0].Degree)
	assert.Equal(t, "MS", entries[1].Degree)
}

func TestSortEducationUnknownDegreeLast(t *testing.T) {
	entries := []types.EducationEntry{
		{Degree: "Certificate Program", Date: "2019"},
		{Degree: "BS", Date: "2015"},
	}

	SortEducation(entries)

	assert.Equal(t, "BS", entries[0].Degree)
	assert.Equal(t, "Certificate Program", entries[1].Degree)
}
