// Package prompt holds the Vietnamese prompt templates driving the pipeline:
// intent classification, follow-up condensation, retrieval-grounded answering
// and the chat persona. Templates are plain fmt strings; builders fill in
// history, query and context.
package prompt

import (
	"fmt"
	"strings"

	"github.com/vietlabor/lawrag/core"
)

// EmptyHistory is substituted when a session has no prior turns.
const EmptyHistory = "(Chưa có)"

// OutOfScopeAnswer is the fixed reply when no legal basis was retrieved. The
// context prompt instructs the model to answer exactly this; it is also used
// verbatim when generation runs with an empty context.
const OutOfScopeAnswer = "Câu hỏi của bạn không nằm trong phạm vi của tôi."

// EmptyGenerationAnswer replaces a completed but empty generation.
const EmptyGenerationAnswer = "Xin lỗi, tôi không thể tạo câu trả lời."

const routerTemplate = `Bạn là bộ phân loại ý định. Xác định câu hỏi thuộc loại nào:
1. **LAW**: Câu hỏi về pháp luật lao động Việt Nam
2. **CHAT**: Chào hỏi, câu hỏi chung không liên quan đến luật

QUAN TRỌNG: Nếu có lịch sử về pháp luật và câu hỏi hiện tại là follow-up, phân loại là LAW.

Lịch sử: %s
Câu hỏi: %s

Trả lời:
INTENT: [LAW hoặc CHAT]
CONFIDENCE: [0.0-1.0]
REASONING: [Giải thích ngắn]`

const condenseTemplate = `Cho lịch sử và câu hỏi tiếp theo, viết lại thành câu hỏi độc lập.

QUY TẮC QUAN TRỌNG:
1. PHẢI GIỮ NGUYÊN các từ khóa pháp lý: sáp nhập, tái cơ cấu, mang thai, thai sản, nghỉ hưu, sa thải, độc hại, BHTN, BHXH, trợ cấp, hợp đồng
2. PHẢI GIỮ NGUYÊN các con số: số năm làm việc, số tiền lương, tuổi, thời gian đóng bảo hiểm
3. PHẢI GIỮ NGUYÊN lý do nghỉ việc nếu có đề cập
4. Chỉ viết lại để câu hỏi rõ ràng hơn, KHÔNG THAY ĐỔI ý nghĩa

Lịch sử: %s
Câu hỏi: %s

Câu hỏi đã viết lại:`

const contextTemplate = `Bạn là trợ lý AI chuyên gia về Pháp luật Lao động Việt Nam.

CƠ SỞ DỮ LIỆU: Bộ luật Lao động 2019, Luật ATVSLĐ 2015, Luật BHXH 2024, Luật Việc làm 2024, NĐ145/2020, NĐ12/2022, NĐ293/2025

NGUYÊN TẮC TRẢ LỜI:
1. Chỉ dựa vào điều khoản được cung cấp
2. Trích dẫn tên văn bản, số Điều, Khoản
3. Trả lời tiếng Việt, rõ ràng, ngắn gọn
4. Nếu không có thông tin, trả lời '%s'

QUY TẮC TÍNH TOÁN TRỢ CẤP (nếu hỏi về trợ cấp):
- Trợ cấp THÔI VIỆC (Điều 46): 0.5 tháng lương × số năm = khi tự nghỉ, hết hạn HĐ
- Trợ cấp MẤT VIỆC LÀM (Điều 47): 1 tháng lương × số năm, tối thiểu 2 tháng = khi sáp nhập, tái cơ cấu, cắt giảm
- Thời gian tính = Tổng thời gian làm việc - Thời gian đóng BHTN
- Làm tròn: dưới 6 tháng → 0.5 năm, từ 6 tháng → 1 năm
- Trợ cấp thất nghiệp (Điều 50 Luật VL): 60%% lương × số tháng (mỗi 12 tháng đóng = 3 tháng hưởng)

CÁC ĐIỀU KHOẢN:
%s

Câu hỏi: %s
Trả lời:`

const chatTemplate = `Bạn là trợ lý AI thân thiện về Pháp luật Lao động Việt Nam. Trả lời câu hỏi chung hoặc chào hỏi.

Nếu hỏi về khả năng, giải thích bạn có thể trả lời về Bộ luật Lao động, Luật BHXH, hợp đồng lao động, tiền lương, v.v.

Lịch sử: %s
Câu hỏi: %s
Trả lời:`

func orEmpty(history string) string {
	if strings.TrimSpace(history) == "" {
		return EmptyHistory
	}
	return history
}

// Router renders the intent-classification prompt.
func Router(history, query string) string {
	return fmt.Sprintf(routerTemplate, orEmpty(history), query)
}

// Condense renders the follow-up rewrite prompt.
func Condense(history, question string) string {
	return fmt.Sprintf(condenseTemplate, orEmpty(history), question)
}

// LawContext renders the retrieval-grounded answer prompt from the selected
// chunks. Each chunk is prefixed with its citation line so the model can
// quote document, article and title.
func LawContext(chunks []core.ScoredChunk, query string) string {
	var sb strings.Builder
	for i, sc := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		m := sc.Chunk.Metadata
		fmt.Fprintf(&sb, "[%s - Điều %s", m.ShortName, m.ArticleID)
		if m.ArticleTitle != "" {
			fmt.Fprintf(&sb, ": %s", m.ArticleTitle)
		}
		sb.WriteString("]\n")
		sb.WriteString(sc.Chunk.Text)
	}
	contextStr := sb.String()
	if contextStr == "" {
		contextStr = "(Không có điều khoản nào được tìm thấy)"
	}
	return fmt.Sprintf(contextTemplate, OutOfScopeAnswer, contextStr, query)
}

// Chat renders the no-retrieval chat persona prompt.
func Chat(history, query string) string {
	return fmt.Sprintf(chatTemplate, orEmpty(history), query)
}
