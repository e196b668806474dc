package client

import (
	"errors"
	"fmt"
)

type Lang string

const (
	LangEnglish Lang = "en"
	LangNepali  Lang = "ne"
)

func ParseLang(value string) (Lang, bool) {
	switch Lang(value) {
	case LangEnglish, LangNepali:
		return Lang(value), true
	}
	return "", false
}

func (l Lang) Toggle() Lang {
	if l == LangNepali {
		return LangEnglish
	}
	return LangNepali
}

type Message string

const (
	MsgMarkFailed       Message = "mark_failed"
	MsgAddFailed        Message = "add_failed"
	MsgExportFailed     Message = "export_failed"
	MsgLinkFailed       Message = "link_failed"
	MsgError            Message = "error"
	MsgNotSignedIn      Message = "not_signed_in"
	MsgLoginRequired    Message = "login_required"
	MsgOnlyAdminAdd     Message = "only_admin_add"
	MsgOnlyAdminLink    Message = "only_admin_link"
	MsgOnlySupervisors  Message = "only_supervisors"
	MsgEmployeeAdded    Message = "employee_added"
	MsgLinked           Message = "linked"
	MsgEmployeeDeleted  Message = "employee_deleted"
	MsgMarked           Message = "marked"
	MsgTotal            Message = "total"
	MsgSessionExpired   Message = "session_expired"
	MsgPasswordReset    Message = "password_reset"
	MsgSignedInAs       Message = "signed_in_as"
	MsgSignedOut        Message = "signed_out"
	MsgExported         Message = "exported"
	MsgRegistered       Message = "registered"
	MsgLanguageSwitched Message = "language_switched"
)

var catalog = map[Message]map[Lang]string{
	MsgMarkFailed:       {LangEnglish: "Could not mark attendance: ", LangNepali: "हाजिरी लगाउन सकिएन: "},
	MsgAddFailed:        {LangEnglish: "Could not add employee: ", LangNepali: "कर्मचारी थप्न सकेन: "},
	MsgExportFailed:     {LangEnglish: "Export failed: ", LangNepali: "निर्यात असफल भयो: "},
	MsgLinkFailed:       {LangEnglish: "Link failed: ", LangNepali: "लिङ्क असफल भयो: "},
	MsgError:            {LangEnglish: "", LangNepali: "त्रुटि: "},
	MsgNotSignedIn:      {LangEnglish: "Not signed in", LangNepali: "साइन इन गरिएको छैन"},
	MsgLoginRequired:    {LangEnglish: "Please login", LangNepali: "कृपया लगइन गर्नुहोस्"},
	MsgOnlyAdminAdd:     {LangEnglish: "Only Admin can add employees", LangNepali: "केवल एडमिनले कर्मचारी थप्न सक्छ"},
	MsgOnlyAdminLink:    {LangEnglish: "Only Admin can link employees", LangNepali: "केवल एडमिनले कर्मचारी लिंक गर्न सक्छ"},
	MsgOnlySupervisors:  {LangEnglish: "Only Admin/Manager can export", LangNepali: "केवल एडमिन/म्यानेजरले निर्यात गर्न सक्छ"},
	MsgEmployeeAdded:    {LangEnglish: "Employee added", LangNepali: "कर्मचारी थपियो"},
	MsgLinked:           {LangEnglish: "Linked", LangNepali: "लिङ्क गरियो"},
	MsgEmployeeDeleted:  {LangEnglish: "Employee deleted", LangNepali: "कर्मचारी हटाइयो"},
	MsgMarked:           {LangEnglish: "Attendance marked", LangNepali: "हाजिरी लगाइयो"},
	MsgTotal:            {LangEnglish: "Total: ", LangNepali: "कुल: "},
	MsgSessionExpired:   {LangEnglish: "Session expired. Please log in again.", LangNepali: "सत्र समाप्त भयो। कृपया फेरि लगइन गर्नुहोस्।"},
	MsgPasswordReset:    {LangEnglish: "Password reset", LangNepali: "पासवर्ड रिसेट गरियो"},
	MsgSignedInAs:       {LangEnglish: "Signed in as ", LangNepali: "साइन इन: "},
	MsgSignedOut:        {LangEnglish: "Signed out", LangNepali: "साइन आउट गरियो"},
	MsgExported:         {LangEnglish: "Saved ", LangNepali: "सुरक्षित गरियो: "},
	MsgRegistered:       {LangEnglish: "Registered user ", LangNepali: "दर्ता भयो: "},
	MsgLanguageSwitched: {LangEnglish: "Language: English", LangNepali: "भाषा: नेपाली"},
}

// T returns the message text in lang, falling back to English.
func T(lang Lang, msg Message) string {
	texts, ok := catalog[msg]
	if !ok {
		return string(msg)
	}
	if text, ok := texts[lang]; ok {
		return text
	}
	return texts[LangEnglish]
}

// Failure prefixes err with the localized failure text for msg.
func Failure(lang Lang, msg Message, err error) string {
	return fmt.Sprintf("%s%s", T(lang, msg), errorText(err))
}

func errorText(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
