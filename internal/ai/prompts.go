package ai

import (
	"fmt"
	"strings"
)

const (
	FallbackRun       = "Đã xảy ra lỗi khi thực thi prompt này. Vui lòng thử lại sau."
	EmptyRun          = "AI không trả về kết quả nào."
	FallbackSmart     = "Không thể tạo prompt."
	FallbackSummary   = "Không thể tóm tắt."
	FallbackOCR       = "Không tìm thấy văn bản."
	FallbackFile      = "Không thể xử lý định dạng này. Vui lòng thử PDF hoặc tệp văn bản chuẩn."
	EmptyFile         = "Không tìm thấy nội dung văn bản."
	QuickTestSuffix   = "\n\n(Lưu ý: Trả lời cực kỳ súc tích, tóm gọn trong tối đa 2 đoạn văn)"
	analysisTextLimit = 2000
	repairPrefixLen   = 50
)

// Persona is the system instruction of a session together with its user-facing failure replies.
type Persona struct {
	System   string
	Fallback string
	Empty    string
	kind     Kind
}

var AssistantPersona = Persona{
	System:   "Bạn là trợ lý giáo dục AI cao cấp. Hãy trả lời chuyên nghiệp, súc tích bằng tiếng Việt.",
	Fallback: "Lỗi kết nối hoặc mô hình đang bận.",
	Empty:    "Lỗi phản hồi.",
}

var ExecutionPersona = Persona{
	System:   "Bạn là trợ lý giáo dục YouLearn AI chuyên nghiệp. Hãy thực thi các yêu cầu dưới đây một cách chi tiết, chính xác và có cấu trúc rõ ràng.",
	Fallback: "Lỗi thực thi. Hãy kiểm tra lại kết nối API hoặc nội dung prompt.",
	Empty:    EmptyRun,
	kind:     KindExecution,
}

// StudyPersona grounds a session on the given document.
func StudyPersona(document string) Persona {
	return Persona{
		System:   fmt.Sprintf("Bạn là YouLearn AI. Hãy trả lời dựa trên văn bản này: %s.", document),
		Fallback: "Lỗi kết nối. Vui lòng thử lại sau.",
		Empty:    "AI không thể trả lời.",
	}
}

func smartPromptPrompt(idea string) string {
	return fmt.Sprintf(`Người dùng muốn thực hiện nhiệm vụ: "%s".
Hãy viết lại yêu cầu này thành một "Prompt" (câu lệnh) chuyên nghiệp, chi tiết và hiệu quả để gửi cho AI.
Sử dụng cấu trúc:
1. Vai trò (Role): AI đóng vai ai?
2. Bối cảnh (Context): Thông tin nền.
3. Nhiệm vụ (Task): Cụ thể cần làm gì.
4. Định dạng (Format): Kết quả trả về như thế nào.

Chỉ trả về nội dung của Prompt đã tối ưu, bằng tiếng Việt.`, idea)
}

func summaryPrompt(text string) string {
	return "Tóm tắt nội dung sau đây một cách chuyên nghiệp và súc tích bằng tiếng Việt. Nếu có định nghĩa quan trọng hãy bôi đậm:\n\n" + text
}

func flashcardPrompt(text string) string {
	return "Tạo 5-8 flashcard từ nội dung này. Mặt trước là thuật ngữ/câu hỏi ngắn. Mặt sau là định nghĩa/câu trả lời súc tích.\nNội dung: " + text
}

func quizPrompt(text string) string {
	return "Tạo 5 câu hỏi trắc nghiệm khách quan từ nội dung này. Câu hỏi phải bao quát ý chính.\nNội dung: " + text
}

func relatedTopicPrompt(text string) string {
	return "Từ nội dung này, hãy đề xuất 4-5 chủ đề nâng cao hoặc liên quan để người học mở rộng kiến thức.\nNội dung gốc: " + text
}

func analysisPrompt(text string) string {
	return fmt.Sprintf(`Phân tích văn bản sau và đề xuất hành động.
Văn bản: "%s..." (đã cắt bớt)

Yêu cầu:
1. Xác định loại nội dung: 'PROBLEM' (Bài tập/Đề thi/Câu hỏi) hay 'CONTENT' (Tài liệu/Lý thuyết/Văn bản thường).
2. Tóm tắt nội dung trong 1 câu ngắn.
3. Đề xuất 2 prompt mẫu để xử lý văn bản này.
   - Nếu là PROBLEM: Gợi ý giải từng bước, gợi ý đáp án nhanh.
   - Nếu là CONTENT: Gợi ý giải thích chuyên sâu, gợi ý tóm tắt ý chính.
   - PromptTemplate phải chứa nội dung văn bản gốc đã được chèn vào vị trí thích hợp.

Trả về JSON với các trường type, summary, suggestions (title, description, promptTemplate, icon: calculator|book|sparkles).`, runePrefix(text, analysisTextLimit))
}

const (
	ocrInstruction  = "Hãy trích xuất toàn bộ văn bản có trong hình ảnh này. Giữ nguyên định dạng, công thức toán học."
	fileInstruction = "Hãy trích xuất toàn bộ văn bản và nội dung chính của tệp này (kể cả tệp Word, PDF hay PowerPoint). Trình bày mạch lạc, giữ nguyên cấu trúc các đề mục chính."
)

func illustrationPrompt(description string) string {
	return "A high-contrast minimalist black and white vector illustration for educational concept: " + description + ". Professional clean lines."
}

// ExpandTopicPrompt asks a study session for a section on one related topic.
func ExpandTopicPrompt(t RelatedTopic) string {
	return fmt.Sprintf("Hãy viết một đoạn nội dung giáo dục chi tiết về chủ đề: \"%s\". \nBối cảnh: %s. \nHãy giải thích rõ ràng, dễ hiểu.", t.Title, t.Description)
}

// ExpandedSection is the markdown block appended to the study document.
func ExpandedSection(title, body string) string {
	return "\n\n### Mở rộng: " + title + "\n" + body
}

func runePrefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// cleanJSON strips markdown code fences the model sometimes wraps JSON in.
func cleanJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
