package similarity

import "strings"

// Canonical entity type vocabulary. Free-form extraction labels (including
// Chinese synonyms) are mapped onto these before comparison.
const (
	TypePerson   = "PERSON"
	TypeOrg      = "ORG"
	TypeCompany  = "COMPANY"
	TypeLocation = "LOCATION"
	TypeEvent    = "EVENT"
	TypeActivity = "ACTIVITY"
	TypeProduct  = "PRODUCT"
	TypeWork     = "WORK"
	TypeConcept  = "CONCEPT"
	TypeTime     = "TIME"
	TypeUnknown  = "UNKNOWN"
)

// typeSynonyms maps lowercase extraction labels to canonical types.
var typeSynonyms = map[string]string{
	"person": TypePerson, "people": TypePerson, "human": TypePerson,
	"人物": TypePerson, "人": TypePerson, "角色": TypePerson,

	"org": TypeOrg, "organization": TypeOrg, "organisation": TypeOrg,
	"institution": TypeOrg, "组织": TypeOrg, "机构": TypeOrg, "团体": TypeOrg,

	"company": TypeCompany, "corporation": TypeCompany, "enterprise": TypeCompany,
	"公司": TypeCompany, "企业": TypeCompany,

	"location": TypeLocation, "place": TypeLocation, "gpe": TypeLocation,
	"city": TypeLocation, "country": TypeLocation,
	"地点": TypeLocation, "地区": TypeLocation, "位置": TypeLocation,

	"event": TypeEvent, "事件": TypeEvent,

	"activity": TypeActivity, "action": TypeActivity, "活动": TypeActivity, "行为": TypeActivity,

	"product": TypeProduct, "产品": TypeProduct, "商品": TypeProduct,

	"work": TypeWork, "artwork": TypeWork, "book": TypeWork,
	"作品": TypeWork, "书籍": TypeWork,

	"concept": TypeConcept, "idea": TypeConcept, "概念": TypeConcept,

	"time": TypeTime, "date": TypeTime, "时间": TypeTime, "日期": TypeTime,

	"unknown": TypeUnknown, "misc": TypeUnknown, "other": TypeUnknown,
	"未知": TypeUnknown, "其他": TypeUnknown,
}

// typeSimilarityTable holds hand-tuned pairwise similarities between distinct
// canonical types. Entries are stored in one direction and read symmetrically.
// The values are inherited tuning constants, not derived from data.
var typeSimilarityTable = map[[2]string]float64{
	{TypeOrg, TypeCompany}:      0.9,
	{TypeEvent, TypeActivity}:   0.85,
	{TypeProduct, TypeWork}:     0.7,
	{TypeOrg, TypeLocation}:     0.3,
	{TypeCompany, TypeProduct}:  0.4,
	{TypeConcept, TypeProduct}:  0.35,
	{TypeConcept, TypeActivity}: 0.3,
	{TypePerson, TypeOrg}:       0.2,
	{TypeEvent, TypeTime}:       0.4,
}

// CanonicalizeType maps a free-text entity type label to the canonical
// vocabulary. Unmapped labels that already look canonical (single uppercase
// word) pass through; everything else becomes UNKNOWN only when empty,
// otherwise the uppercased label itself so unseen vocabularies still compare
// equal to themselves.
func CanonicalizeType(t string) string {
	trimmed := strings.TrimSpace(t)
	if trimmed == "" {
		return TypeUnknown
	}
	if canonical, ok := typeSynonyms[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return strings.ToUpper(trimmed)
}

// TypeSimilarity scores two free-form type labels in [0,1]:
//   - 1.0 for equal non-UNKNOWN canonical types
//   - 0.5 when either side is UNKNOWN
//   - the fixed table entry when one exists (read symmetrically)
//   - otherwise 0.6 × EditSimilarity of the canonical labels
func TypeSimilarity(t1, t2 string) float64 {
	c1 := CanonicalizeType(t1)
	c2 := CanonicalizeType(t2)

	if c1 == TypeUnknown || c2 == TypeUnknown {
		return 0.5
	}
	if c1 == c2 {
		return 1.0
	}

	if score, ok := typeSimilarityTable[[2]string{c1, c2}]; ok {
		return score
	}
	if score, ok := typeSimilarityTable[[2]string{c2, c1}]; ok {
		return score
	}

	return 0.6 * EditSimilarity(c1, c2)
}
