package template

// Defaults returns the built-in agricultural notification templates.
// Deployments can replace or extend the set by constructing the engine
// with their own slice.
func Defaults() []Template {
	return []Template{
		{
			Name:         "weather_alert",
			SMS:          "Weather Alert: {condition} in {location} on {date}. {actionAdvice}",
			EmailSubject: "Weather Alert: {condition}",
			EmailBody:    "Hello {name}, a weather alert has been issued for {location}: {condition} expected on {date}. {actionAdvice}",
		},
		{
			Name:         "planting_reminder",
			SMS:          "Planting Reminder: it is time to plant {cropName} in {location}. Optimal window: {plantingWindow}. Contact {extensionOfficer} for guidance.",
			EmailSubject: "Planting Reminder: {cropName}",
			EmailBody:    "Hello {name}, the planting window for {cropName} in {location} opens {plantingWindow}. Contact your extension officer at {extensionOfficer} for guidance.",
		},
		{
			Name:         "harvest_reminder",
			SMS:          "Harvest Reminder: {cropName} planted on {plantingDate} is ready for harvest. Contact {extensionOfficer} for support.",
			EmailSubject: "Harvest Reminder: {cropName}",
			EmailBody:    "Hello {name}, your {cropName} planted on {plantingDate} is due for harvest. Contact your extension officer at {extensionOfficer} for support.",
		},
		{
			Name:         "vaccination_reminder",
			SMS:          "Vaccination Reminder: {animalType} vaccination ({vaccineType}) is due on {dueDate}. Visit your nearest veterinary office.",
			EmailSubject: "Livestock Health Reminder: {vaccineType}",
			EmailBody:    "Hello {name}, the {vaccineType} vaccination for your {animalType} is due on {dueDate}. Please visit your nearest veterinary office.",
		},
		{
			Name:         "crop_alert",
			SMS:          "Crop Alert: {title}. {description} Affected crop: {cropName}. {recommendation}",
			EmailSubject: "Crop Alert: {title}",
			EmailBody:    "Hello {name}, a crop alert affects your {cropName}: {description} Recommendation: {recommendation}",
		},
		{
			Name:         "market_update",
			SMS:          "Market Update {date}: {cropName} is trading at {price} per {unit} in {market}.",
			EmailSubject: "Market Update: {cropName}",
			EmailBody:    "Hello {name}, as of {date} {cropName} is trading at {price} per {unit} in {market}.",
		},
	}
}
