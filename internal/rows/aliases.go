package rows

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/JonMunkholm/athletix/internal/textfold"
)

// commonAliases are accepted by every format.
var commonAliases = map[Field][]string{
	FieldLicense:       {"license", "licence", "license no", "license number"},
	FieldFirstName:     {"first name", "firstname", "first_name", "given name"},
	FieldLastName:      {"last name", "lastname", "last_name", "surname", "family name"},
	FieldFullName:      {"name", "full name", "full_name", "athlete", "competitor"},
	FieldBirthDate:     {"date of birth", "birth date", "birth_date", "dob"},
	FieldBirthYear:     {"year of birth", "birth year", "birth_year", "yob"},
	FieldClub:          {"club"},
	FieldEvent:         {"event", "discipline"},
	FieldRound:         {"round"},
	FieldBib:           {"bib", "bib no"},
	FieldSeedMark:      {"seed", "seed mark", "seed_mark", "entry mark"},
	FieldPersonalBest:  {"pb", "personal best", "personal_best"},
	FieldSeasonBest:    {"sb", "season best", "season_best"},
	FieldResult:        {"result", "mark"},
	FieldWind:          {"wind"},
	FieldReactionTime:  {"reaction time", "reaction_time", "reaction", "rt"},
	FieldPosition:      {"position", "place", "pos", "rank"},
	FieldStatus:        {"status"},
	FieldTeam:          {"team", "relay"},
	FieldRelayPosition: {"relay position", "relay_position", "leg"},
	FieldSplits:        {"splits", "split times"},
}

// pzlaAliases are the spellings used by Polish federation export tools.
var pzlaAliases = map[Field][]string{
	FieldLicense:       {"licencja", "nr licencji", "nr lic.", "nr lic", "pzla id"},
	FieldFirstName:     {"imię", "imie"},
	FieldLastName:      {"nazwisko"},
	FieldFullName:      {"zawodnik", "zawodniczka", "imię i nazwisko", "nazwisko i imię", "nazwisko imię"},
	FieldBirthDate:     {"data urodzenia", "data ur.", "data ur"},
	FieldBirthYear:     {"rocznik", "rok urodzenia", "rok ur.", "rok ur", "r.ur."},
	FieldClub:          {"klub", "klub/szkoła", "szkoła", "stowarzyszenie"},
	FieldEvent:         {"konkurencja", "dyscyplina"},
	FieldRound:         {"runda", "etap"},
	FieldBib:           {"nr startowy", "numer startowy", "numer", "nr"},
	FieldSeedMark:      {"wynik zgłoszeniowy", "zgłoszenie", "wynik zgł.", "wynik zgl"},
	FieldPersonalBest:  {"rekord życiowy", "rekord zyciowy", "życiówka", "rż"},
	FieldSeasonBest:    {"najlepszy wynik w sezonie", "wynik w sezonie", "rekord sezonu", "ws"},
	FieldResult:        {"wynik", "rezultat", "czas"},
	FieldWind:          {"wiatr"},
	FieldReactionTime:  {"czas reakcji", "reakcja"},
	FieldPosition:      {"miejsce", "m-ce", "lokata", "m."},
	FieldStatus:        {"uwagi"},
	FieldTeam:          {"sztafeta", "drużyna"},
	FieldRelayPosition: {"zmiana"},
	FieldSplits:        {"międzyczasy"},
}

// internationalAliases follow World Athletics style result sheets.
var internationalAliases = map[Field][]string{
	FieldLicense:   {"athlete id", "wa id", "id"},
	FieldFullName:  {"athlete name", "competitor name"},
	FieldBirthDate: {"born"},
	FieldClub:      {"nat", "nation", "country", "federation", "affiliation"},
	FieldBib:       {"bib number"},
	FieldSeedMark:  {"entry standard"},
	FieldResult:    {"time", "performance", "perf"},
	FieldPosition:  {"pl.", "pl"},
	FieldStatus:    {"remarks", "irm"},
}

// aliasTables maps a format to folded header tokens.
var aliasTables = map[Format]map[string]Field{
	FormatPZLA:          buildAliasTable(commonAliases, pzlaAliases),
	FormatInternational: buildAliasTable(commonAliases, internationalAliases),
}

// mojibakeDecoders reproduce what happens when a UTF-8 header is opened
// with a legacy code page and saved again.
var mojibakeDecoders = []*charmap.Charmap{
	charmap.Windows1250,
	charmap.Windows1252,
	charmap.ISO8859_2,
}

func buildAliasTable(sets ...map[Field][]string) map[string]Field {
	table := make(map[string]Field)
	add := func(key string, f Field) {
		if key == "" {
			return
		}
		if _, exists := table[key]; !exists {
			table[key] = f
		}
	}

	// Real spellings first so a mis-encoded variant never shadows one.
	for _, set := range sets {
		for f, names := range set {
			add(textfold.Fold(string(f)), f)
			for _, n := range names {
				add(textfold.Fold(n), f)
			}
		}
	}
	for _, set := range sets {
		for f, names := range set {
			for _, n := range names {
				for _, v := range mojibakeVariants(n) {
					add(textfold.Fold(v), f)
				}
			}
		}
	}
	return table
}

// mojibakeVariants returns the mis-encoded spellings of a header that
// contains non-ASCII letters, e.g. "Imię" read as cp1250 is "ImiÄ™".
func mojibakeVariants(name string) []string {
	if isASCII(name) {
		return nil
	}

	var out []string
	for _, cm := range mojibakeDecoders {
		// Header text is short; decoding a UTF-8 string byte-wise never fails.
		if v, err := cm.NewDecoder().String(name); err == nil && v != name {
			out = append(out, v)
		}
	}
	out = append(out, replaceNonASCII(name, string(utf8.RuneError)), replaceNonASCII(name, "?"))
	return out
}

func replaceNonASCII(s, with string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= utf8.RuneSelf {
			b.WriteString(with)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Lookup returns the canonical field for a header cell in the given format.
func Lookup(format Format, header string) (Field, bool) {
	table, ok := aliasTables[format]
	if !ok {
		return "", false
	}
	clean, present := Clean(header)
	if !present {
		return "", false
	}
	f, ok := table[textfold.Fold(clean)]
	return f, ok
}
