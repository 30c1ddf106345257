// Package enumtab holds the symbolic name <-> small integer code tables
// (C7) that the arg package's per-protocol overrides consult: orientation
// justify characters, object-type codes, alert types, criterion codes, MAT
// sub-enums, BUF/HFS flag bits. Grounded on protocol/thrift/thrift.go's
// closed constant blocks (TType, TMessageType, ...) paired with
// protocol/thrift/utils.go's reverse-lookup helpers, generalized into one
// reusable bidirectional table type instead of one map pair per enum.
package enumtab

import "strings"

// Table is a closed, case-insensitive name <-> code mapping.
type Table struct {
	byName map[string]uint32
	byCode map[uint32]string
}

// New builds a Table from a canonical name -> code map. When two names
// share a code (aliases), the alphabetically first one becomes the
// canonical name returned by Name; both are accepted by Code.
func New(entries map[string]uint32) Table {
	t := Table{byName: make(map[string]uint32, len(entries)), byCode: make(map[uint32]string, len(entries))}
	for name, code := range entries {
		t.byName[strings.ToLower(name)] = code
		if prev, exists := t.byCode[code]; !exists || name < prev {
			t.byCode[code] = name
		}
	}
	return t
}

// Code looks up the numeric code for a symbolic name.
func (t Table) Code(name string) (uint32, bool) {
	c, ok := t.byName[strings.ToLower(name)]
	return c, ok
}

// Name looks up the canonical symbolic name for a numeric code.
func (t Table) Name(code uint32) (string, bool) {
	n, ok := t.byCode[code]
	return n, ok
}

// ObjectType is the OBJSTART single-byte type code table (spec §4.3.3).
// Unknown names of the form "unknown_N" are handled by the caller, not
// here; names absent from this table default to ind_group.
var ObjectType = New(map[string]uint32{
	"org_group": 0, "ind_group": 1, "dms_list": 2, "sms_list": 3,
	"dss_list": 4, "sss_list": 5, "trigger": 6, "ornament": 7,
	"view": 8, "edit_view": 9, "boolean": 10, "select_boolean": 11,
	"range": 12, "select_range": 13, "variable": 14,
	"ruler": 15, "bad_object": 15,
	"root": 16, "popup_menu": 16,
	"rich_text": 17, "tool_group": 17,
	"multimedia": 18, "tab_group": 18,
	"chart": 19, "tab_page": 19,
	"pictalk": 20, "www": 21, "split": 22, "organizer": 23,
	"tree": 24, "tab": 25, "progress": 26, "toolbar": 27, "slider": 28,
})

// DefaultObjectTypeCode is the fallback for a name this table (and the
// unknown_N form) does not recognize.
const DefaultObjectTypeCode = 1 // ind_group

// OrientJustify maps the single-character justify token used inside an
// orientation symbol (spec §4.3.4).
var OrientJustify = map[byte]uint32{
	'c': 0, 'l': 1, 't': 1, 'r': 2, 'b': 2, 'f': 3, 'e': 4,
}

// OrientCanonical holds full symbol -> byte overrides that take precedence
// over the direction+justify pattern (spec §4.3.4: "vff=0x5B, hef=0x23").
var OrientCanonical = map[string]uint32{
	"vff": 0x5B,
	"hef": 0x23,
}

// AlertCode is the ALERT/ALERT_LEGACY type-byte table (spec §4.3.5).
var AlertCode = New(map[string]uint32{
	"info": 1, "error": 2, "pop_info": 3, "pop_error": 4,
	"warning": 5, "pop_warning": 6, "yes_no": 7, "yes_no_cancel": 8,
})

// Criterion is the CRITERION/CRITERION_LEGACY code table (spec §4.3.6).
var Criterion = New(map[string]uint32{
	"void": 0, "select": 1, "close": 2, "open": 3, "gain_focus": 4,
	"lose_focus": 5, "cancel": 6, "enter_free": 7, "enter_paid": 8,
	"create": 9, "set_online": 10, "set_offline": 11, "restore": 12,
	"minimize": 14, "restore_from_maximize": 15, "restore_from_minimize": 16,
	"timeout": 17, "screen_name_changed": 18, "movie_over": 19, "drop": 20,
	"url_drop": 21, "user_delete": 22, "toggle_up": 23, "activated": 24,
	"deactivated": 25, "popupmenu": 26, "destroyed": 27,
})

// UniCharset is the uni_start_typed_data / uni_next_atom_typed charset word
// table (spec §4.3.7 UNI).
var UniCharset = New(map[string]uint32{
	"ascii":  0x0000,
	"latin1": 0x0104,
})

// DefaultUniCharset is used when the named charset isn't recognized.
const DefaultUniCharset = 0x0000

// MatFontStyle is mat_font_sis's pipeable style-bit table (spec §4.3.7 MAT).
var MatFontStyle = New(map[string]uint32{
	"bold": 1, "italic": 2, "underline": 4, "strikeout": 8,
})

// MatFrameStyle is mat_frame_style's 2-byte enum table.
var MatFrameStyle = New(map[string]uint32{
	"none": 0, "etched": 1, "raised": 2, "sunken": 3,
	"thick": 4, "double": 5, "shadow": 6, "highlight": 7,
})

// MatTriggerStyle is mat_trigger_style's 2-byte enum table.
var MatTriggerStyle = New(map[string]uint32{
	"default": 0, "push_button": 1, "check_box": 2, "radio_button": 3,
	"hot_spot": 4, "tab": 5, "toggle": 6, "group_state": 7,
})

// MatTitlePos holds mat_title_pos's pipeable bit table, including the
// legacy aliases.
var MatTitlePos = New(map[string]uint32{
	"right_or_below": 0x80, "above_or_below": 0x40,
	"top_or_left": 1, "bottom_or_right": 2,
})

// MatTextOnPicturePos holds mat_text_on_picture_pos's pipeable flag table.
var MatTextOnPicturePos = New(map[string]uint32{
	"art_middle_right": 0x50, "title_middle_left": 0x04,
})

// MatAutoComplete is mat_auto_complete's per-element byte table.
var MatAutoComplete = New(map[string]uint32{
	"web_list": 0, "address_list": 1, "other_list": 2, "std_sort_search": 1,
})

// MatPosition is mat_position's single-byte enum table.
var MatPosition = New(map[string]uint32{
	"cascade": 0, "top_left": 1, "top_center": 2, "top_right": 3,
	"middle_left": 4, "middle_center": 5, "middle_right": 6,
	"bottom_left": 7, "bottom_center": 8, "bottom_right": 9,
})

// ManDisplayCharacteristic is man_get_display_characteristics's id table.
var ManDisplayCharacteristic = New(map[string]uint32{
	"width": 0, "height": 1, "horzres": 2, "vertres": 3,
})

// DeValidateFlag is de_validate's pipeable flag-byte table.
var DeValidateFlag = New(map[string]uint32{
	"display_msg": 1, "terminate": 2,
})

// BufFlag is the BUF protocol's 4-byte big-endian flag identifier table
// (spec §4.3.7 BUF).
var BufFlag = New(map[string]uint32{
	"token_header": 1, "stream_id_header": 2, "host_bound": 4,
	"start_stream_header": 8, "end_stream_trailer": 0x10,
	"data_included": 0x20, "leave_buffer_open": 0x40,
	"response_id_header": 0x80, "pointer_included": 0x100,
	"clear_buffer": 0x200,
})

// FmHandleErrorFlag is fm_handle_error's pipeable flag-byte table.
var FmHandleErrorFlag = New(map[string]uint32{
	"display_msg": 1, "terminate": 2, "broadcast": 4,
})
