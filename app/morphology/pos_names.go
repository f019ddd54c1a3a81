package morphology

// posNames expands the short part-of-speech codes used by the corpus
// annotations to display names. Codes not in the table pass through
// unchanged.
var posNames = map[string]string{
	"N":        "Noun",
	"PN":       "Proper Noun",
	"ADJ":      "Adjective",
	"V":        "Verb",
	"P":        "Preposition",
	"PRON":     "Pronoun",
	"DET":      "Determiner",
	"REL":      "Relative Pronoun",
	"T":        "Particle",
	"NEG":      "Negative Particle",
	"CONJ":     "Conjunction",
	"INTERROG": "Interrogative",
	"VOC":      "Vocative Particle",
	"SUB":      "Subordinating Conjunction",
	"EMPH":     "Emphatic Particle",
	"IMPV":     "Imperative Particle",
	"ACC":      "Accusative Particle",
	"AMD":      "Amendment Particle",
	"ANS":      "Answer Particle",
	"AVR":      "Aversion Particle",
	"CAUS":     "Causative Particle",
	"CERT":     "Certainty Particle",
	"CIRC":     "Circumstantial Particle",
	"COM":      "Comitative Particle",
	"COND":     "Conditional Particle",
	"EQ":       "Equalization Particle",
	"EXH":      "Exhortation Particle",
	"EXL":      "Explanation Particle",
	"EXP":      "Exceptive Particle",
	"FUT":      "Future Particle",
	"INC":      "Inceptive Particle",
	"INT":      "Intensification Particle",
	"INTG":     "Interrogative Particle",
	"PRO":      "Prohibition Particle",
	"REM":      "Resumption Particle",
	"RES":      "Restriction Particle",
	"RET":      "Retraction Particle",
	"RSLT":     "Result Particle",
	"SUP":      "Supplemental Particle",
	"SUR":      "Surprise Particle",
}

// POSName returns the full display name for a POS code.
func POSName(code string) string {
	if full, ok := posNames[code]; ok {
		return full
	}
	return code
}
