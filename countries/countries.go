// This package provides ISO 3166-1 country lookups for normalizing the
// free-text country names that appear in field sample uploads.
package countries

import (
	"cmp"
	"slices"
	"strings"
)

// a country name paired with its two-letter ISO 3166-1 code
type country struct {
	Name string
	Code string
}

// compares two strings without regard to case
func compareFold(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Returns the two-letter ISO 3166-1 code for the given country name, using a
// case-insensitive binary search. The second return value is false if the
// name is not recognized; callers treat an unrecognized name as an optional
// field, not an error.
func CodeFromName(name string) (string, bool) {
	i, found := slices.BinarySearchFunc(countriesByName, name,
		func(c country, target string) int {
			return compareFold(c.Name, target)
		})
	if !found {
		return "", false
	}
	return countriesByName[i].Code, true
}

// Returns true if the given string is a valid two-letter ISO 3166-1 country
// code (case-insensitively).
func IsValidCode(code string) bool {
	_, found := slices.BinarySearchFunc(countryCodes, code, compareFold)
	return found
}

func init() {
	// the tables are declared in reading order; sort them under the same
	// comparison the searches use so the binary searches are well defined
	// for non-ASCII names
	slices.SortFunc(countriesByName, func(a, b country) int {
		return compareFold(a.Name, b.Name)
	})
	slices.SortFunc(countryCodes, compareFold)
}

var countriesByName = []country{
	{"Afghanistan", "AF"},
	{"Åland Islands", "AX"},
	{"Albania", "AL"},
	{"Algeria", "DZ"},
	{"American Samoa", "AS"},
	{"Andorra", "AD"},
	{"Angola", "AO"},
	{"Anguilla", "AI"},
	{"Antarctica", "AQ"},
	{"Antigua and Barbuda", "AG"},
	{"Argentina", "AR"},
	{"Armenia", "AM"},
	{"Aruba", "AW"},
	{"Australia", "AU"},
	{"Austria", "AT"},
	{"Azerbaijan", "AZ"},
	{"Bahamas", "BS"},
	{"Bahrain", "BH"},
	{"Bangladesh", "BD"},
	{"Barbados", "BB"},
	{"Belarus", "BY"},
	{"Belgium", "BE"},
	{"Belize", "BZ"},
	{"Benin", "BJ"},
	{"Bermuda", "BM"},
	{"Bhutan", "BT"},
	{"Bolivia, Plurinational State of", "BO"},
	{"Bonaire, Sint Eustatius and Saba", "BQ"},
	{"Bosnia and Herzegovina", "BA"},
	{"Botswana", "BW"},
	{"Bouvet Island", "BV"},
	{"Brazil", "BR"},
	{"British Indian Ocean Territory", "IO"},
	{"Brunei Darussalam", "BN"},
	{"Bulgaria", "BG"},
	{"Burkina Faso", "BF"},
	{"Burundi", "BI"},
	{"Cabo Verde", "CV"},
	{"Cambodia", "KH"},
	{"Cameroon", "CM"},
	{"Canada", "CA"},
	{"Cayman Islands", "KY"},
	{"Central African Republic", "CF"},
	{"Chad", "TD"},
	{"Chile", "CL"},
	{"China", "CN"},
	{"Christmas Island", "CX"},
	{"Cocos (Keeling) Islands", "CC"},
	{"Colombia", "CO"},
	{"Comoros", "KM"},
	{"Congo", "CG"},
	{"Congo, the Democratic Republic of the", "CD"},
	{"Cook Islands", "CK"},
	{"Costa Rica", "CR"},
	{"Côte d'Ivoire", "CI"},
	{"Croatia", "HR"},
	{"Cuba", "CU"},
	{"Curaçao", "CW"},
	{"Cyprus", "CY"},
	{"Czech Republic", "CZ"},
	{"Denmark", "DK"},
	{"Djibouti", "DJ"},
	{"Dominica", "DM"},
	{"Dominican Republic", "DO"},
	{"Ecuador", "EC"},
	{"Egypt", "EG"},
	{"El Salvador", "SV"},
	{"Equatorial Guinea", "GQ"},
	{"Eritrea", "ER"},
	{"Estonia", "EE"},
	{"Ethiopia", "ET"},
	{"Falkland Islands (Malvinas)", "FK"},
	{"Faroe Islands", "FO"},
	{"Fiji", "FJ"},
	{"Finland", "FI"},
	{"France", "FR"},
	{"French Guiana", "GF"},
	{"French Polynesia", "PF"},
	{"French Southern Territories", "TF"},
	{"Gabon", "GA"},
	{"Gambia", "GM"},
	{"Georgia", "GE"},
	{"Germany", "DE"},
	{"Ghana", "GH"},
	{"Gibraltar", "GI"},
	{"Greece", "GR"},
	{"Greenland", "GL"},
	{"Grenada", "GD"},
	{"Guadeloupe", "GP"},
	{"Guam", "GU"},
	{"Guatemala", "GT"},
	{"Guernsey", "GG"},
	{"Guinea", "GN"},
	{"Guinea-Bissau", "GW"},
	{"Guyana", "GY"},
	{"Haiti", "HT"},
	{"Heard Island and McDonald Islands", "HM"},
	{"Holy See", "VA"},
	{"Honduras", "HN"},
	{"Hong Kong", "HK"},
	{"Hungary", "HU"},
	{"Iceland", "IS"},
	{"India", "IN"},
	{"Indonesia", "ID"},
	{"Iran, Islamic Republic of", "IR"},
	{"Iraq", "IQ"},
	{"Ireland", "IE"},
	{"Isle of Man", "IM"},
	{"Israel", "IL"},
	{"Italy", "IT"},
	{"Jamaica", "JM"},
	{"Japan", "JP"},
	{"Jersey", "JE"},
	{"Jordan", "JO"},
	{"Kazakhstan", "KZ"},
	{"Kenya", "KE"},
	{"Kiribati", "KI"},
	{"Korea, Democratic People's Republic of", "KP"},
	{"Korea, Republic of", "KR"},
	{"Kuwait", "KW"},
	{"Kyrgyzstan", "KG"},
	{"Lao People's Democratic Republic", "LA"},
	{"Latvia", "LV"},
	{"Lebanon", "LB"},
	{"Lesotho", "LS"},
	{"Liberia", "LR"},
	{"Libya", "LY"},
	{"Liechtenstein", "LI"},
	{"Lithuania", "LT"},
	{"Luxembourg", "LU"},
	{"Macao", "MO"},
	{"Macedonia, the former Yugoslav Republic of", "MK"},
	{"Madagascar", "MG"},
	{"Malawi", "MW"},
	{"Malaysia", "MY"},
	{"Maldives", "MV"},
	{"Mali", "ML"},
	{"Malta", "MT"},
	{"Marshall Islands", "MH"},
	{"Martinique", "MQ"},
	{"Mauritania", "MR"},
	{"Mauritius", "MU"},
	{"Mayotte", "YT"},
	{"Mexico", "MX"},
	{"Micronesia, Federated States of", "FM"},
	{"Moldova, Republic of", "MD"},
	{"Monaco", "MC"},
	{"Mongolia", "MN"},
	{"Montenegro", "ME"},
	{"Montserrat", "MS"},
	{"Morocco", "MA"},
	{"Mozambique", "MZ"},
	{"Myanmar", "MM"},
	{"Namibia", "NA"},
	{"Nauru", "NR"},
	{"Nepal", "NP"},
	{"Netherlands", "NL"},
	{"New Caledonia", "NC"},
	{"New Zealand", "NZ"},
	{"Nicaragua", "NI"},
	{"Niger", "NE"},
	{"Nigeria", "NG"},
	{"Niue", "NU"},
	{"Norfolk Island", "NF"},
	{"Northern Mariana Islands", "MP"},
	{"Norway", "NO"},
	{"Oman", "OM"},
	{"Pakistan", "PK"},
	{"Palau", "PW"},
	{"Palestine, State of", "PS"},
	{"Panama", "PA"},
	{"Papua New Guinea", "PG"},
	{"Paraguay", "PY"},
	{"Peru", "PE"},
	{"Philippines", "PH"},
	{"Pitcairn", "PN"},
	{"Poland", "PL"},
	{"Portugal", "PT"},
	{"Puerto Rico", "PR"},
	{"Qatar", "QA"},
	{"Réunion", "RE"},
	{"Romania", "RO"},
	{"Russian Federation", "RU"},
	{"Rwanda", "RW"},
	{"Saint Barthélemy", "BL"},
	{"Saint Helena, Ascension and Tristan da Cunha", "SH"},
	{"Saint Kitts and Nevis", "KN"},
	{"Saint Lucia", "LC"},
	{"Saint Martin (French part)", "MF"},
	{"Saint Pierre and Miquelon", "PM"},
	{"Saint Vincent and the Grenadines", "VC"},
	{"Samoa", "WS"},
	{"San Marino", "SM"},
	{"Sao Tome and Principe", "ST"},
	{"Saudi Arabia", "SA"},
	{"Senegal", "SN"},
	{"Serbia", "RS"},
	{"Seychelles", "SC"},
	{"Sierra Leone", "SL"},
	{"Singapore", "SG"},
	{"Sint Maarten (Dutch part)", "SX"},
	{"Slovakia", "SK"},
	{"Slovenia", "SI"},
	{"Solomon Islands", "SB"},
	{"Somalia", "SO"},
	{"South Africa", "ZA"},
	{"South Georgia and the South Sandwich Islands", "GS"},
	{"South Sudan", "SS"},
	{"Spain", "ES"},
	{"Sri Lanka", "LK"},
	{"Sudan", "SD"},
	{"Suriname", "SR"},
	{"Svalbard and Jan Mayen", "SJ"},
	{"Swaziland", "SZ"},
	{"Sweden", "SE"},
	{"Switzerland", "CH"},
	{"Syrian Arab Republic", "SY"},
	{"Taiwan, Province of China", "TW"},
	{"Tajikistan", "TJ"},
	{"Tanzania, United Republic of", "TZ"},
	{"Thailand", "TH"},
	{"Timor-Leste", "TL"},
	{"Togo", "TG"},
	{"Tokelau", "TK"},
	{"Tonga", "TO"},
	{"Trinidad and Tobago", "TT"},
	{"Tunisia", "TN"},
	{"Turkey", "TR"},
	{"Turkmenistan", "TM"},
	{"Turks and Caicos Islands", "TC"},
	{"Tuvalu", "TV"},
	{"Uganda", "UG"},
	{"Ukraine", "UA"},
	{"United Arab Emirates", "AE"},
	{"United Kingdom of Great Britain and Northern Ireland", "GB"},
	{"United States Minor Outlying Islands", "UM"},
	{"United States of America", "US"},
	{"Uruguay", "UY"},
	{"Uzbekistan", "UZ"},
	{"Vanuatu", "VU"},
	{"Venezuela, Bolivarian Republic of", "VE"},
	{"Viet Nam", "VN"},
	{"Virgin Islands, British", "VG"},
	{"Virgin Islands, U.S.", "VI"},
	{"Wallis and Futuna", "WF"},
	{"Western Sahara", "EH"},
	{"Yemen", "YE"},
	{"Zambia", "ZM"},
	{"Zimbabwe", "ZW"},
}

var countryCodes = []string{
	"AD", "AE", "AF", "AG", "AI", "AL", "AM", "AO", "AQ", "AR", "AS", "AT",
	"AU", "AW", "AX", "AZ", "BA", "BB", "BD", "BE", "BF", "BG", "BH", "BI",
	"BJ", "BL", "BM", "BN", "BO", "BQ", "BR", "BS", "BT", "BV", "BW", "BY",
	"BZ", "CA", "CC", "CD", "CF", "CG", "CH", "CI", "CK", "CL", "CM", "CN",
	"CO", "CR", "CU", "CV", "CW", "CX", "CY", "CZ", "DE", "DJ", "DK", "DM",
	"DO", "DZ", "EC", "EE", "EG", "EH", "ER", "ES", "ET", "FI", "FJ", "FK",
	"FM", "FO", "FR", "GA", "GB", "GD", "GE", "GF", "GG", "GH", "GI", "GL",
	"GM", "GN", "GP", "GQ", "GR", "GS", "GT", "GU", "GW", "GY", "HK", "HM",
	"HN", "HR", "HT", "HU", "ID", "IE", "IL", "IM", "IN", "IO", "IQ", "IR",
	"IS", "IT", "JE", "JM", "JO", "JP", "KE", "KG", "KH", "KI", "KM", "KN",
	"KP", "KR", "KW", "KY", "KZ", "LA", "LB", "LC", "LI", "LK", "LR", "LS",
	"LT", "LU", "LV", "LY", "MA", "MC", "MD", "ME", "MF", "MG", "MH", "MK",
	"ML", "MM", "MN", "MO", "MP", "MQ", "MR", "MS", "MT", "MU", "MV", "MW",
	"MX", "MY", "MZ", "NA", "NC", "NE", "NF", "NG", "NI", "NL", "NO", "NP",
	"NR", "NU", "NZ", "OM", "PA", "PE", "PF", "PG", "PH", "PK", "PL", "PM",
	"PN", "PR", "PS", "PT", "PW", "PY", "QA", "RE", "RO", "RS", "RU", "RW",
	"SA", "SB", "SC", "SD", "SE", "SG", "SH", "SI", "SJ", "SK", "SL", "SM",
	"SN", "SO", "SR", "SS", "ST", "SV", "SX", "SY", "SZ", "TC", "TD", "TF",
	"TG", "TH", "TJ", "TK", "TL", "TM", "TN", "TO", "TR", "TT", "TV", "TW",
	"TZ", "UA", "UG", "UM", "US", "UY", "UZ", "VA", "VC", "VE", "VG", "VI",
	"VN", "VU", "WF", "WS", "YE", "YT", "ZA", "ZM", "ZW",
}
