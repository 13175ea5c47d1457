package models

// Update представляет входящее обновление от Telegram.
type Update struct {
	ID      int64
	Message *Message
}

type Message struct {
	Chat Chat
	From Sender
	Text string
}

type Chat struct {
	ID int64
}

type Sender struct {
	ID           int64
	Username     string
	LanguageCode string
}
