package global

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("phone", validatePhone)
	_ = Validate.RegisterValidation("slug", validateSlug)
}

// validateNoXSS kiểm tra chuỗi không chứa các pattern XSS phổ biến
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"<iframe",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\s\-\.]{5,19}$`)

// validatePhone kiểm tra số điện thoại: cho phép +, chữ số, khoảng trắng, gạch nối
func validatePhone(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return false
	}
	return phoneRegex.MatchString(value)
}

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// validateSlug kiểm tra slug của tenant: chữ thường, chữ số, gạch nối
func validateSlug(fl validator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}
