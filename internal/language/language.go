package language

import "strings"

type entry struct {
	code2 string // ISO 639-1 (2-letter)
	code3 string // ISO 639-2 primary (3-letter)
	alt3  string // ISO 639-2 alternate (e.g. "fre" vs "fra")
	word  string // full English name
}

var languages = []entry{
	{"en", "eng", "", "english"},
	{"es", "spa", "", "spanish"},
	{"fr", "fra", "fre", "french"},
	{"de", "deu", "ger", "german"},
	{"it", "ita", "", "italian"},
	{"pt", "por", "", "portuguese"},
	{"ja", "jpn", "", "japanese"},
	{"ko", "kor", "", "korean"},
	{"zh", "zho", "chi", "chinese"},
	{"ru", "rus", "", "russian"},
	{"ar", "ara", "", "arabic"},
	{"hi", "hin", "", "hindi"},
	{"nl", "nld", "dut", "dutch"},
	{"pl", "pol", "", "polish"},
	{"sv", "swe", "", "swedish"},
	{"da", "dan", "", "danish"},
	{"no", "nor", "", "norwegian"},
	{"fi", "fin", "", "finnish"},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		byWord[e.word] = e
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ToISO3 converts a 2-letter code, 3-letter code, or English name to its
// ISO 639-2 (3-letter) form, the form the muxer tags a subtitle stream
// with. An unrecognized 3-letter input passes through unchanged, on the
// assumption it is already a valid code this table just doesn't carry;
// anything else unrecognized returns "und".
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}
