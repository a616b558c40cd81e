package i18n

import "golang.org/x/text/language"

// translations maps a message key to its rendering per non-English
// locale. English output is the key itself.
var translations = map[string]map[language.Tag]string{
	"Invalid credentials": {
		language.Vietnamese: "Thông tin đăng nhập không hợp lệ",
	},
	"Token has expired": {
		language.Vietnamese: "Token đã hết hạn",
	},
	"Invalid token": {
		language.Vietnamese: "Token không hợp lệ",
	},
	"User not found": {
		language.Vietnamese: "Không tìm thấy người dùng",
	},
	"User (%s) not found": {
		language.Vietnamese: "Không tìm thấy người dùng (%s)",
	},
	"Email already exists": {
		language.Vietnamese: "Email đã tồn tại",
	},
	"Not authenticated": {
		language.Vietnamese: "Chưa xác thực",
	},
	"Validation error": {
		language.Vietnamese: "Dữ liệu không hợp lệ",
	},
	"Internal server error": {
		language.Vietnamese: "Lỗi máy chủ nội bộ",
	},
	"Too many requests": {
		language.Vietnamese: "Quá nhiều yêu cầu",
	},
	"Welcome to %s": {
		language.Vietnamese: "Chào mừng bạn đến với %s",
	},
}
