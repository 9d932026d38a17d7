package parser

import (
	"regexp"
	"sort"
	"strings"

	"resume-agent-go/internal/types"
)

var (
	toSeparatorPattern = regexp.MustCompile(`(?i)\s+to\s+`)
	dashSpacingPattern = regexp.MustCompile(`\s*[-\x{2013}\x{2014}]\s*`)
	openEndedPattern   = regexp.MustCompile(` - [^0-9]*$`)

	missingCommaPattern  = regexp.MustCompile(`^([A-Za-z\s]+)\s+([A-Z]{2})$`)
	commaSpacingPattern  = regexp.MustCompile(`\s*,\s*`)
	locSeparatorPattern  = regexp.MustCompile(`[-|]\s*`)
	yearPattern          = regexp.MustCompile(`\d{4}`)
)

// 月份全称到三字母缩写
var monthAbbreviations = []struct{ full, abbr string }{
	{"January", "Jan"}, {"February", "Feb"}, {"March", "Mar"}, {"April", "Apr"},
	{"June", "Jun"}, {"July", "Jul"}, {"August", "Aug"},
	{"September", "Sep"}, {"October", "Oct"}, {"November", "Nov"}, {"December", "Dec"},
}

// 州全称到两字母缩写。固定顺序切片保证归一化结果可复现。
var usStates = []struct{ full, abbr string }{
	{"Alabama", "AL"}, {"Alaska", "AK"}, {"Arizona", "AZ"}, {"Arkansas", "AR"}, {"California", "CA"},
	{"Colorado", "CO"}, {"Connecticut", "CT"}, {"Delaware", "DE"}, {"Florida", "FL"}, {"Georgia", "GA"},
	{"Hawaii", "HI"}, {"Idaho", "ID"}, {"Illinois", "IL"}, {"Indiana", "IN"}, {"Iowa", "IA"},
	{"Kansas", "KS"}, {"Kentucky", "KY"}, {"Louisiana", "LA"}, {"Maine", "ME"}, {"Maryland", "MD"},
	{"Massachusetts", "MA"}, {"Michigan", "MI"}, {"Minnesota", "MN"}, {"Mississippi", "MS"}, {"Missouri", "MO"},
	{"Montana", "MT"}, {"Nebraska", "NE"}, {"Nevada", "NV"}, {"New Hampshire", "NH"}, {"New Jersey", "NJ"},
	{"New Mexico", "NM"}, {"New York", "NY"}, {"North Carolina", "NC"}, {"North Dakota", "ND"}, {"Ohio", "OH"},
	{"Oklahoma", "OK"}, {"Oregon", "OR"}, {"Pennsylvania", "PA"}, {"Rhode Island", "RI"}, {"South Carolina", "SC"},
	{"South Dakota", "SD"}, {"Tennessee", "TN"}, {"Texas", "TX"}, {"Utah", "UT"}, {"Vermont", "VT"},
	{"Virginia", "VA"}, {"Washington", "WA"}, {"West Virginia", "WV"}, {"Wisconsin", "WI"}, {"Wyoming", "WY"},
}

var stateSuffixPatterns = buildStateSuffixPatterns()

type stateSuffixPattern struct {
	pattern *regexp.Regexp
	abbr    string
}

func buildStateSuffixPatterns() []stateSuffixPattern {
	patterns := make([]stateSuffixPattern, 0, len(usStates))
	for _, state := range usStates {
		patterns = append(patterns, stateSuffixPattern{
			pattern: regexp.MustCompile(`(?i),\s*` + regexp.QuoteMeta(state.full) + `$`),
			abbr:    state.abbr,
		})
	}
	return patterns
}

// NormalizeWorkPeriod 把工作时间段统一为 "Mon YYYY - Mon YYYY" 风格：
// 各类横线和 "to" 统一为 " - "，月份全称改三字母缩写，
// 横线后没有数字的结尾改为 "Till Date"。幂等。
func NormalizeWorkPeriod(workPeriod string) string {
	if workPeriod == "" {
		return workPeriod
	}

	normalized := strings.ReplaceAll(workPeriod, "–", "-")
	normalized = strings.ReplaceAll(normalized, "—", "-")
	normalized = toSeparatorPattern.ReplaceAllString(normalized, " - ")
	normalized = dashSpacingPattern.ReplaceAllString(normalized, " - ")

	for _, month := range monthAbbreviations {
		normalized = strings.ReplaceAll(normalized, month.full, month.abbr)
	}

	normalized = openEndedPattern.ReplaceAllString(normalized, " - Till Date")

	return strings.TrimSpace(normalized)
}

// NormalizeLocation 把地点统一为 "City, XX" 风格：
// 压缩空白，州全称改缩写，补缺失的逗号，规整逗号间距，
// 横线和竖线分隔符改逗号。
func NormalizeLocation(location string) string {
	if location == "" {
		return location
	}

	normalized := strings.Join(strings.Fields(location), " ")

	for _, state := range stateSuffixPatterns {
		normalized = state.pattern.ReplaceAllString(normalized, ", "+state.abbr)
	}

	normalized = missingCommaPattern.ReplaceAllString(normalized, "$1, $2")
	normalized = commaSpacingPattern.ReplaceAllString(normalized, ", ")
	normalized = locSeparatorPattern.ReplaceAllString(normalized, ", ")

	return strings.TrimSpace(normalized)
}

// 学位别名到标准形式
var degreeAliases = map[string]string{
	"btech":    "BS",
	"b.tech":   "BS",
	"be":       "BS",
	"b.e":      "BS",
	"bachelor": "BS",
	"bs":       "BS",
	"ba":       "BA",
	"mtech":    "MS",
	"m.tech":   "MS",
	"me":       "MS",
	"m.e":      "MS",
	"master":   "MS",
	"ms":       "MS",
	"ma":       "MA",
	"mba":      "MBA",
	"mcom":     "MCom",
	"m.com":    "MCom",
	"phd":      "PhD",
	"ph.d":     "PhD",
	"doctorate": "PhD",
	"jd":       "JD",
	"j.d":      "JD",
	"aa":       "AA",
	"as":       "AS",
}

// 学位层级，用于教育经历升序排列
var degreeRank = map[string]int{
	"AA": 0, "AS": 0,
	"BS": 1, "BA": 1,
	"MS": 2, "MA": 2, "MBA": 2, "MCom": 2,
	"PhD": 3, "JD": 3,
}

// StandardizeDegree 把学位别名归一到标准缩写，
// 无法识别的学位原样保留。
func StandardizeDegree(degree string) string {
	trimmed := strings.TrimSpace(degree)
	key := strings.ToLower(strings.TrimSuffix(trimmed, "."))
	key = strings.ReplaceAll(key, " ", "")
	if standard, ok := degreeAliases[key]; ok {
		return standard
	}
	// "Bachelor of Technology" 这类写法按首个词归类
	words := strings.Fields(trimmed)
	if len(words) == 0 {
		return trimmed
	}
	switch strings.ToLower(words[0]) {
	case "bachelor", "bachelors", "bachelor's":
		return "BS"
	case "master", "masters", "master's":
		return "MS"
	case "doctor", "doctorate":
		return "PhD"
	}
	return trimmed
}

// SortEducation 先标准化学位，再按学位层级升序稳定排序，
// 同层级按最早的年份在前。无法识别的学位排在已识别的之后。
func SortEducation(entries []types.EducationEntry) {
	for i := range entries {
		entries[i].Degree = StandardizeDegree(entries[i].Degree)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ri, iOK := degreeRank[entries[i].Degree]
		rj, jOK := degreeRank[entries[j].Degree]
		if iOK != jOK {
			return iOK
		}
		if ri != rj {
			return ri < rj
		}
		yi, iHas := firstYear(entries[i].Date)
		yj, jHas := firstYear(entries[j].Date)
		if iHas && jHas && yi != yj {
			return yi < yj
		}
		return false
	})
}

// firstYear 取日期字符串中第一个四位年份
func firstYear(date string) (int, bool) {
	match := yearPattern.FindString(date)
	if match == "" {
		return 0, false
	}
	year := 0
	for _, c := range match {
		year = year*10 + int(c-'0')
	}
	return year, true
}
