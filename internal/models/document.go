package models

// RelevantInfoKey is the top-level key wrapping the extracted fields.
const RelevantInfoKey = "relevant_info"

// DateOfIssueField is normalized by stripping spaces from its value.
const DateOfIssueField = "date_of_issue"

// Field is one named string field the model is asked to fill in. Example is
// the value shown in the prompt template.
type Field struct {
	Name    string
	Example string
}

// IdentityFields is the field schema of a national identity card, in prompt order.
var IdentityFields = []Field{
	{Name: "serial_number"},
	{Name: "id_number"},
	{Name: "full_names"},
	{Name: "date_of_birth"},
	{Name: "sex"},
	{Name: "district_of_birth"},
	{Name: "place_of_issue"},
	{Name: DateOfIssueField},
	{Name: "country", Example: "REPUBLIC OF KENYA"},
}
