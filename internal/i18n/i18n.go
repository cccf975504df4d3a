// Package i18n holds the user facing strings in every supported language.
package i18n

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Lang is a display language code.
type Lang string

const (
	Chinese Lang = "zh"
	English Lang = "en"

	// Default is used for unknown or empty codes.
	Default = Chinese
)

// Languages lists the supported codes in menu order.
var Languages = []Lang{Chinese, English}

// Key names a message.
type Key string

const (
	AutoRefresh     Key = "autoRefresh"
	RefreshDesc     Key = "refreshDesc"
	AddTags         Key = "addTags"
	TagDesc         Key = "tagDesc"
	RemoveTags      Key = "removeTags"
	RemoveTagDesc   Key = "removeTagDesc"
	SelectAll       Key = "selectAll"
	UnselectAll     Key = "unselectAll"
	Save            Key = "save"
	Example         Key = "example"
	FileProcessed   Key = "fileProcessed"
	NoFileSelected  Key = "noFileSelected"
	NoTagsInput     Key = "noTagsInput"
	FolderName      Key = "folderName"
	CommandName     Key = "commandName"
	OperationFailed Key = "operationFailed"
	UnknownError    Key = "unknownError"
	DryRunResult    Key = "dryRunResult"
	ConfirmApply    Key = "confirmApply"
	Aborted         Key = "aborted"
	Language        Key = "language"
	LanguageDesc    Key = "languageDesc"
	LanguageChanged Key = "languageChanged"
	StampUpdated    Key = "stampUpdated"
	SettingsSaved   Key = "settingsSaved"
	Selected        Key = "selected"
	Help            Key = "help"
	NoTagsKnown     Key = "noTagsKnown"
)

type message func(args ...any) string

func text(s string) message {
	return func(...any) string { return s }
}

func count(format string) message {
	return func(args ...any) string {
		return fmt.Sprintf(format, humanize.Comma(int64(intArg(args, 0))))
	}
}

func format(f string) message {
	return func(args ...any) string {
		return fmt.Sprintf(f, args...)
	}
}

func folder(root, other string) message {
	return func(args ...any) string {
		if intArg(args, 0) == 0 {
			return root
		}
		return other
	}
}

func intArg(args []any, i int) int {
	if i >= len(args) {
		return 0
	}
	switch v := args[i].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	}
	return 0
}

var resources = map[Lang]map[Key]message{
	Chinese: {
		AutoRefresh:     text("自动刷新"),
		RefreshDesc:     text("修改文件后自动刷新文件列表"),
		AddTags:         text("添加标签"),
		TagDesc:         text("用逗号分隔多个标签（输入时会有建议）"),
		RemoveTags:      text("删除标签"),
		RemoveTagDesc:   text("用逗号分隔要删除的标签（空则不删除）"),
		SelectAll:       text("全选"),
		UnselectAll:     text("全不选"),
		Save:            text("保存修改"),
		Example:         text("示例："),
		FileProcessed:   count("✅ 成功处理 %s 个文件"),
		NoFileSelected:  text("⚠️ 请至少选择一个文件"),
		NoTagsInput:     text("⚠️ 请输入要添加或删除的标签"),
		FolderName:      folder("全部文件", "文件夹"),
		CommandName:     text("自定义属性标签"),
		OperationFailed: format("❌ 操作失败：%v"),
		UnknownError:    text("未知错误"),
		DryRunResult:    count("🔍 预览：将处理 %s 个文件"),
		ConfirmApply:    count("确认修改 %s 个文件的标签？"),
		Aborted:         text("已取消"),
		Language:        text("语言"),
		LanguageDesc:    text("界面显示语言"),
		LanguageChanged: text("语言已更改"),
		StampUpdated:    text("修改标签时写入 updated 字段"),
		SettingsSaved:   text("设置已保存"),
		Selected:        count("已选择 %s 个文件"),
		Help:            text("空格 选择 · 回车 展开 · a/A 全选/全不选 · tab 切换 · ctrl+s 保存 · esc 退出"),
		NoTagsKnown:     text("库中没有标签"),
	},
	English: {
		AutoRefresh:     text("Auto Refresh"),
		RefreshDesc:     text("Refresh file list automatically when modified"),
		AddTags:         text("Add tags"),
		TagDesc:         text("Multiple tags separated by commas (with suggestions)"),
		RemoveTags:      text("Remove tags"),
		RemoveTagDesc:   text("Tags to remove (empty for none)"),
		SelectAll:       text("Select All"),
		UnselectAll:     text("Unselect All"),
		Save:            text("Save Changes"),
		Example:         text("Example: "),
		FileProcessed:   count("✅ Processed %s files"),
		NoFileSelected:  text("⚠️ Please select at least one file"),
		NoTagsInput:     text("⚠️ Please enter tags to add or remove"),
		FolderName:      folder("All Files", "Folder"),
		CommandName:     text("Advanced Tag Manager"),
		OperationFailed: format("❌ Operation failed: %v"),
		UnknownError:    text("Unknown error"),
		DryRunResult:    count("🔍 Dry run: %s files would change"),
		ConfirmApply:    count("Update tags on %s files?"),
		Aborted:         text("Aborted"),
		Language:        text("Language"),
		LanguageDesc:    text("Application display language"),
		LanguageChanged: text("Language changed"),
		StampUpdated:    text("Stamp an updated field on tag edits"),
		SettingsSaved:   text("Settings saved"),
		Selected:        count("%s files selected"),
		Help:            text("space select · enter expand · a/A all/none · tab focus · ctrl+s save · esc quit"),
		NoTagsKnown:     text("No tags in vault"),
	},
}

// Parse maps a code onto a supported language, falling back to Default.
func Parse(code string) Lang {
	l := Lang(code)
	if _, ok := resources[l]; ok {
		return l
	}
	return Default
}

// Valid reports whether code names a supported language.
func Valid(code string) bool {
	_, ok := resources[Lang(code)]
	return ok
}

// T renders key in lang. Unknown keys render as the key itself.
func T(lang Lang, key Key, args ...any) string {
	table, ok := resources[lang]
	if !ok {
		table = resources[Default]
	}
	if msg, ok := table[key]; ok {
		return msg(args...)
	}
	return string(key)
}

// Translator binds a language for repeated lookups.
type Translator struct {
	Lang Lang
}

func New(code string) Translator {
	return Translator{Lang: Parse(code)}
}

func (t Translator) T(key Key, args ...any) string {
	return T(t.Lang, key, args...)
}
