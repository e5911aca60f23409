package catalog

var defaultStates = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka",
	"Kerala", "Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya",
	"Mizoram", "Nagaland", "Odisha", "Punjab", "Rajasthan", "Sikkim",
	"Tamil Nadu", "Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand",
	"West Bengal",
	"Andaman and Nicobar Islands", "Chandigarh",
	"Dadra and Nagar Haveli and Daman and Diu", "Delhi", "Jammu and Kashmir",
	"Ladakh", "Lakshadweep", "Puducherry",
}

var defaultCountries = []string{
	"Afghanistan", "Argentina", "Australia", "Austria", "Bangladesh",
	"Belgium", "Bhutan", "Brazil", "Canada", "Chile", "China", "Colombia",
	"Cuba", "Denmark", "Egypt", "Ethiopia", "Finland", "France", "Germany",
	"Ghana", "Greece", "India", "Indonesia", "Iran", "Iraq", "Ireland",
	"Israel", "Italy", "Japan", "Kenya", "Malaysia", "Mexico", "Myanmar",
	"Nepal", "Netherlands", "New Zealand", "Nigeria", "Norway", "Pakistan",
	"Peru", "Philippines", "Poland", "Portugal", "Russia", "Saudi Arabia",
	"Singapore", "South Africa", "South Korea", "Spain", "Sri Lanka",
	"Sweden", "Switzerland", "Tanzania", "Thailand", "Turkey", "Uganda",
	"Ukraine", "United Kingdom", "United States", "Vietnam", "Zimbabwe",
}
