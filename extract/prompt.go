package extract

import (
	"fmt"
	"strings"

	"github.com/vimedkg/vimedkg/graph"
)

// entityExamples pairs each extractable entity type with one short
// Vietnamese example, grounded on spec.md §6's entity vocabulary.
var entityExamples = []struct {
	Type    string
	Example string
}{
	{graph.TypeDisease, "đái tháo đường type 2"},
	{graph.TypeDrug, "metformin"},
	{graph.TypeSymptom, "khát nước nhiều"},
	{graph.TypeTest, "xét nghiệm HbA1c"},
	{graph.TypeAnatomy, "thận"},
	{graph.TypeTreatment, "liệu pháp insulin"},
	{graph.TypeProcedure, "chạy thận nhân tạo"},
	{graph.TypeRiskFactor, "béo phì"},
	{graph.TypeLabValue, "đường huyết lúc đói 180 mg/dL"},
}

// relationTier groups a subset of the 12 forward relation types under one
// semantic label, matching graph/entity.go's grouping of the same
// constants (§4.3's "grouped by semantic tier" prompt requirement).
type relationTier struct {
	Name  string
	Types []string
}

var relationTiers = []relationTier{
	{"Core", []string{graph.RelCauses, graph.RelTreats, graph.RelPrevents, graph.RelDiagnoses}},
	{"Risk", []string{graph.RelIncreasesRisk}},
	{"Clinical", []string{graph.RelSymptomOf, graph.RelComplicationOf}},
	{"Pharmacological", []string{graph.RelSideEffectOf, graph.RelInteractsWith}},
	{"Severity", []string{graph.RelWorsens}},
	{"Structural", []string{graph.RelIndicates}},
	{"Catch-all", []string{graph.RelRelatedTo}},
}

// negativeExamples enumerates the administrative/bureaucratic text the
// model must not turn into entities, mirroring validate.go's
// administrativePatterns so the prompt and the Validator agree on what
// counts as noise rather than clinical content.
var negativeExamples = []string{
	`"Quyết định số 123/QĐ-BYT" — văn bản hành chính, không phải bệnh/thuốc`,
	`"Trang 5" — số trang, không phải thực thể`,
	`"Điều 3, Khoản 2" — số điều/khoản của văn bản pháp quy`,
	`"Phụ lục II" — tên phụ lục, không phải thực thể y khoa`,
	`"Bộ Y tế" — tên cơ quan ban hành, không phải thực thể lâm sàng`,
}

// fewShotBlock demonstrates combined entity+relation extraction over short
// Vietnamese clinical snippets, one exemplar per common shape: a single
// causal relation, a treatment relation plus a side effect, a pure symptom
// listing with no relation worth the confidence floor, and a catch-all
// case to contrast against a more specific tier.
const fewShotBlock = `Ví dụ 1:
Văn bản: "Đái tháo đường type 2 kéo dài không kiểm soát có thể dẫn đến bệnh thận mạn do tổn thương vi mạch ở cầu thận."
Kết quả:
{"entities":[{"name":"Đái tháo đường type 2","type":"DISEASE","description":"Bệnh rối loạn chuyển hóa đường huyết mạn tính","relevance_score":9},{"name":"Bệnh thận mạn","type":"DISEASE","description":"Suy giảm chức năng thận kéo dài","relevance_score":8}],"relations":[{"source_name":"Đái tháo đường type 2","target_name":"Bệnh thận mạn","relation":"CAUSES","confidence_score":8,"evidence":"kéo dài không kiểm soát có thể dẫn đến bệnh thận mạn do tổn thương vi mạch ở cầu thận"}]}

Ví dụ 2:
Văn bản: "Metformin được chỉ định điều trị đái tháo đường type 2, tuy nhiên có thể gây rối loạn tiêu hóa ở một số bệnh nhân."
Kết quả:
{"entities":[{"name":"Metformin","type":"DRUG","description":"Thuốc hạ đường huyết nhóm biguanide","relevance_score":9},{"name":"Đái tháo đường type 2","type":"DISEASE","description":"Bệnh rối loạn chuyển hóa đường huyết mạn tính","relevance_score":8},{"name":"Rối loạn tiêu hóa","type":"SYMPTOM","description":"Tác dụng phụ đường tiêu hóa","relevance_score":6}],"relations":[{"source_name":"Metformin","target_name":"Đái tháo đường type 2","relation":"TREATS","confidence_score":9,"evidence":"được chỉ định điều trị đái tháo đường type 2"},{"source_name":"Rối loạn tiêu hóa","target_name":"Metformin","relation":"SIDE_EFFECT_OF","confidence_score":7,"evidence":"có thể gây rối loạn tiêu hóa ở một số bệnh nhân"}]}

Ví dụ 3:
Văn bản: "Bệnh nhân than phiền khát nước nhiều và tiểu nhiều, không đề cập đến bệnh lý nền cụ thể trong đoạn này."
Kết quả:
{"entities":[{"name":"Khát nước nhiều","type":"SYMPTOM","description":"Triệu chứng tăng cảm giác khát","relevance_score":6},{"name":"Tiểu nhiều","type":"SYMPTOM","description":"Triệu chứng tăng tần suất đi tiểu","relevance_score":6}],"relations":[]}

Ví dụ 4:
Văn bản: "HbA1c và biến chứng thận có liên quan với nhau trong theo dõi lâu dài, dù đoạn văn không nêu rõ cơ chế nhân quả."
Kết quả:
{"entities":[{"name":"HbA1c","type":"LAB_VALUE","description":"Chỉ số đường huyết trung bình 3 tháng","relevance_score":7},{"name":"Biến chứng thận","type":"DISEASE","description":"Biến chứng ở thận do bệnh nền","relevance_score":7}],"relations":[{"source_name":"HbA1c","target_name":"Biến chứng thận","relation":"RELATED_TO","confidence_score":6,"evidence":"có liên quan với nhau trong theo dõi lâu dài"}]}`

// systemPromptTemplate instructs the model to extract both entities and
// relations in one combined JSON call (§4.3), grounded on
// original_source's rag_service.py::extraction_chain_factory — the Python
// original issued the same instruction via a PromptTemplate piped into a
// PydanticOutputParser; here the parser step is replaced by the
// response_format:"json_object" contract plus strict parsing in
// extractor.go.
const systemPromptTemplate = `Bạn là chuyên gia trích xuất Knowledge Graph y tế từ văn bản lâm sàng tiếng Việt.

Trích xuất các thực thể (entities) và quan hệ (relations) từ đoạn văn bản được cung cấp, và trả về đúng MỘT đối tượng JSON theo schema sau, không kèm giải thích hay markdown:

{
  "entities": [
    {"name": "...", "type": "...", "description": "...", "relevance_score": 1-10}
  ],
  "relations": [
    {"source_name": "...", "target_name": "...", "relation": "...", "confidence_score": 1-10, "evidence": "..."}
  ]
}

Entity types hợp lệ (kèm ví dụ):
%s

Relation types hợp lệ, theo nhóm ngữ nghĩa:
%s

Thang điểm relevance_score (1-10, mức độ trung tâm của thực thể đối với nội dung đoạn văn):
1-3: chỉ được nhắc thoáng qua, không phải trọng tâm.
4-6: có vai trò rõ ràng nhưng không phải chủ đề chính của đoạn.
7-8: là một trong các chủ đề chính của đoạn văn.
9-10: là chủ đề trung tâm, đoạn văn xoay quanh thực thể này.

Thang điểm confidence_score (1-10, mức độ chắc chắn quan hệ được phát biểu rõ ràng trong văn bản):
1-5: suy luận gián tiếp, không đủ chắc chắn để ghi nhận (sẽ bị loại bỏ).
6-7: văn bản gợi ý quan hệ nhưng không nêu cơ chế rõ ràng.
8-9: văn bản phát biểu quan hệ một cách tường minh.
10: quan hệ được phát biểu tường minh kèm cơ chế hoặc bằng chứng chi tiết.

Quy tắc chọn loại quan hệ:
- Luôn ưu tiên loại quan hệ cụ thể nhất (ví dụ: CAUSES, TREATS, SIDE_EFFECT_OF) phù hợp với văn bản.
- CHỈ dùng RELATED_TO khi không có loại quan hệ cụ thể nào ở trên mô tả đúng mối liên hệ trong văn bản.

Ví dụ về nội dung KHÔNG được trích xuất làm thực thể (nhiễu hành chính):
%s

Ví dụ trích xuất đầy đủ:
%s

Quy tắc khác:
- Chỉ trích xuất thực thể y khoa có thật trong văn bản, bỏ qua tiêu đề hành chính, số trang, số điều/khoản/mục.
- confidence_score và relevance_score là số nguyên 1-10.
- evidence là câu hoặc cụm câu trong văn bản chứng minh cho quan hệ.
- Nếu không có thực thể hoặc quan hệ nào, trả về mảng rỗng cho trường tương ứng.`

func buildEntityTypeList() string {
	lines := make([]string, len(entityExamples))
	for i, e := range entityExamples {
		lines[i] = fmt.Sprintf("- %s (ví dụ: %s)", e.Type, e.Example)
	}
	return strings.Join(lines, "\n")
}

func buildRelationTierList() string {
	lines := make([]string, len(relationTiers))
	for i, tier := range relationTiers {
		lines[i] = fmt.Sprintf("- %s: %s", tier.Name, strings.Join(tier.Types, ", "))
	}
	return strings.Join(lines, "\n")
}

func buildNegativeExampleList() string {
	lines := make([]string, len(negativeExamples))
	for i, n := range negativeExamples {
		lines[i] = "- " + n
	}
	return strings.Join(lines, "\n")
}

func buildSystemPrompt() string {
	return fmt.Sprintf(systemPromptTemplate,
		buildEntityTypeList(),
		buildRelationTierList(),
		buildNegativeExampleList(),
		fewShotBlock,
	)
}

func buildUserPrompt(chunkText string) string {
	return fmt.Sprintf("TEXT:\n%s", chunkText)
}
