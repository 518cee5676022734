package service

import "anoa.com/eduainexus/internal/modules/education/dto"

var models = []dto.AIModelInfo{
	{
		Name:        "Gemini",
		Provider:    "Google",
		Description: "Mô hình đa phương thức mạnh mẽ, có khả năng xử lý văn bản, hình ảnh, video và code vượt trội.",
		Strengths:   []string{"Đa phương thức", "Cửa sổ ngữ cảnh lớn", "Tốc độ nhanh (Flash)", "Reasoning mạnh (Pro)"},
		Icon:        "✨",
	},
	{
		Name:        "ChatGPT",
		Provider:    "OpenAI",
		Description: "Chatbot phổ biến nhất, nổi tiếng với khả năng hội thoại tự nhiên và viết sáng tạo.",
		Strengths:   []string{"Hội thoại tự nhiên", "Viết sáng tạo", "Hệ sinh thái plugin"},
		Icon:        "🟢",
	},
	{
		Name:        "Claude",
		Provider:    "Anthropic",
		Description: "Tập trung vào sự an toàn và khả năng viết văn phong tự nhiên, ít \"AI-like\".",
		Strengths:   []string{"An toàn & Đạo đức", "Viết lách sắc sảo", "Xử lý văn bản dài"},
		Icon:        "🟠",
	},
}

var ethics = []dto.EthicsItem{
	{
		Title:   "Kiểm chứng thông tin",
		Content: "AI có thể tạo ra thông tin sai lệch (\"ảo giác\"). Luôn đối chiếu với sách giáo khoa và nguồn tin cậy.",
	},
	{
		Title:   "Chống đạo văn",
		Content: "Sử dụng AI để lấy ý tưởng và dàn ý, KHÔNG sao chép nguyên văn để nộp bài. Hãy biến kiến thức thành của bạn.",
	},
	{
		Title:   "Bảo mật dữ liệu",
		Content: "Không chia sẻ thông tin cá nhân, hình ảnh nhạy cảm hoặc mật khẩu với các công cụ AI.",
	},
	{
		Title:   "Tư duy phản biện",
		Content: "Đừng để AI suy nghĩ thay bạn. Hãy dùng nó để thách thức các giả định và mở rộng góc nhìn của bản thân.",
	},
}

type EducationService interface {
	Guide() dto.EducationResponse
}

type educationService struct{}

func NewEducationService() EducationService {
	return educationService{}
}

// Guide returns copies so callers cannot change the catalogue.
func (educationService) Guide() dto.EducationResponse {
	out := dto.EducationResponse{
		Models: make([]dto.AIModelInfo, len(models)),
		Ethics: make([]dto.EthicsItem, len(ethics)),
	}
	for i, m := range models {
		m.Strengths = append([]string(nil), m.Strengths...)
		out.Models[i] = m
	}
	copy(out.Ethics, ethics)
	return out
}
