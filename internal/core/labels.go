package core

import "strconv"

// Display labels live here, outside the enum values, so the stored strings
// stay stable identifiers and the UI wording can change freely.

var methodLabels = map[PaymentMethod]string{
	MethodCash:     "Cash",
	MethodOnline:   "Online",
	MethodFamily:   "Family Account",
	MethodPersonal: "Personal Account",
}

var statusLabels = map[BillStatus]string{
	BillPending: "Pending",
	BillPartial: "Partially Paid",
	BillPaid:    "Paid",
}

var categoryLabels = map[ExpenseCategory]string{
	"groceries": "Groceries / राशन", "food": "Food / खाना",
	"online_shopping": "Online Shopping", "recharge": "Recharge / रिचार्ज",
	"petrol": "Petrol / पेट्रोल", "travel": "Travel / यात्रा",
	"electricity": "Electricity / बिजली", "medical": "Medical / दवाई",
	"education": "Education / पढ़ाई", "clothing": "Clothing / कपड़े",
	"entertainment": "Entertainment", "makeup": "Makeup",
	"insurance": "Insurance / बीमा", "tax": "Tax / टैक्स",
	"repairing": "Repairing / मरम्मत", "gym": "Gym", "other": "Other / अन्य",
}

var sourceLabels = map[IncomeSource]string{
	"job": "Job / नौकरी", "business": "Business / व्यापार",
	"freelance": "Freelance", "investment": "Investment / निवेश",
	"rental": "Rental / किराया", "other": "Other / अन्य",
}

var relationLabels = map[Relation]string{
	"self": "Self", "father": "Father / पिता", "mother": "Mother / माता",
	"spouse": "Spouse", "brother": "Brother / भाई", "sister": "Sister / बहन",
	"son": "Son / बेटा", "daughter": "Daughter / बेटी",
	"child": "Child / बच्चा", "other": "Other / अन्य",
}

func (m PaymentMethod) Label() string   { return methodLabels[m] }
func (s BillStatus) Label() string      { return statusLabels[s] }
func (c ExpenseCategory) Label() string { return categoryLabels[c] }
func (s IncomeSource) Label() string    { return sourceLabels[s] }
func (r Relation) Label() string        { return relationLabels[r] }

// WarningMessage renders the user-facing reminder text for a bill's warning
// state. Kept bilingual to match the printed bill footer the tenants know.
func WarningMessage(w WarningType, days int, penalty, remaining Money) string {
	switch w {
	case WarnUpcoming:
		return "Due date से पहले अपना payment clear कर दें। " +
			strconv.Itoa(days) + " दिन बाकी हैं। धन्यवाद!"
	case WarnOverdue:
		return "Due date के बाद payment करने पर penalty लग सकती है। कृपया जल्द से जल्द भुगतान करें।"
	case WarnPenalty:
		total := remaining.Add(penalty)
		return "Payment " + strconv.Itoa(days) + " दिन से overdue है! Penalty: " +
			FormatRupees(penalty.Paise) + "। कुल देय राशि: " + FormatRupees(total.Paise) +
			"। कृपया तुरंत भुगतान करें।"
	default:
		return ""
	}
}
