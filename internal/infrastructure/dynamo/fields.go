package dynamo

// DynamoDB attribute and index names shared by the repos and Bootstrap.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldNotificationID   = "notification_id"
	fieldUserID           = "user_id"
	fieldIsRead           = "is_read"
	fieldReadAt           = "read_at"
	fieldNotificationType = "notification_type"
	fieldToken            = "token"
	fieldDeviceID         = "device_id"

	indexNotificationsByUser = "user_id-notification_id-index"
	indexDevicesByUser       = "user_id-device_id-index"
)
