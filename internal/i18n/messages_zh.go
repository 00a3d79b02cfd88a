package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Chinese

	message.SetString(lang, ScanButton, "扫描托盘")
	message.SetString(lang, PromptTitle, "托盘扫描")
	message.SetString(lang, PromptPlaceholder, "请扫描托盘条码...")
	message.SetString(lang, NoBarcode, "未检测到条码")
	message.SetString(lang, ScanSucceeded, "托盘更新成功")
	message.SetString(lang, ScanFailed, "更新失败: %s")
	message.SetString(lang, UnknownError, "未知错误")
	message.SetString(lang, Updating, "正在更新托盘...")

	message.SetString(lang, StationTitle, "托盘扫描工作站")
	message.SetString(lang, StationNotReady, "扫描工作站尚未就绪")
	message.SetString(lang, ScanDisabled, "此行未启用托盘扫描")
	message.SetString(lang, StationHelp, "↑/↓ 选择行 • s 扫描托盘 • ? 帮助 • q 退出")
	message.SetString(lang, NoLines, "没有包裹行。请使用 --line ID=名称 或在配置中添加。")
}
