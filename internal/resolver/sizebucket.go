package resolver

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

var sizeNumberPattern = regexp.MustCompile(`\d+`)

// bucketCeilings pairs each bucket with its employee-count ceiling,
// ascending. Values above the last ceiling fall into SizeOver10000.
var bucketCeilings = []struct {
	ceiling int
	bucket  model.SizeBucket
}{
	{10, model.Size1To10},
	{50, model.Size11To50},
	{200, model.Size51To200},
	{500, model.Size201To500},
	{1000, model.Size501To1000},
	{5000, model.Size1001To5000},
	{10000, model.Size5001To10000},
}

// ClassifySize maps a raw size string ("51-200 employees",
// "10,001+ employees", "500 employees") to its bucket: the largest
// integer present, thousands separators stripped, mapped to the
// smallest ceiling that covers it. Unparseable input is unknown.
func ClassifySize(raw string) model.SizeBucket {
	cleaned := strings.ReplaceAll(raw, ",", "")
	matches := sizeNumberPattern.FindAllString(cleaned, -1)
	if len(matches) == 0 {
		return model.SizeUnknown
	}

	largest := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if n > largest {
			largest = n
		}
	}
	if largest == 0 {
		return model.SizeUnknown
	}

	for _, bc := range bucketCeilings {
		if largest <= bc.ceiling {
			return bc.bucket
		}
	}
	return model.SizeOver10000
}
