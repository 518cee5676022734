package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s là bắt buộc", field)
	case "email":
		return fmt.Sprintf("%s phải là email hợp lệ", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s tối thiểu %s ký tự", field, fe.Param())
		}
		return fmt.Sprintf("%s tối thiểu %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s tối đa %s ký tự", field, fe.Param())
		}
		return fmt.Sprintf("%s tối đa %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s phải là một trong: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s không hợp lệ", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Title":       "Tiêu đề",
		"Description": "Mô tả",
		"Content":     "Nội dung",
		"Category":    "Danh mục",
		"Role":        "Vai trò",
		"Tags":        "Thẻ",
		"Text":        "Văn bản",
		"Idea":        "Ý tưởng",
		"Message":     "Tin nhắn",
		"Mode":        "Chế độ",
		"Document":    "Tài liệu",
		"Speed":       "Tốc độ",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
