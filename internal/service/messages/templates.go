package messages

// Встроенные шаблоны. Параметризованные: greeting (%s — имя),
// code_message (%s — код), bot_blocked (%s — username бота),
// admin_request (%s, %s — имя и логин аккаунта).
var defaults = map[string]map[string]string{
	"ru": {
		KeyWelcome:            "Добро пожаловать! Этот бот привязывает ваш Telegram к аккаунту преподавателя и присылает коды для входа.\n\nОткройте сайт и нажмите «Войти через Telegram», чтобы начать.",
		KeyUnknownCommand:     "Неизвестная команда. Используйте /start для начала.",
		KeyInvalidLink:        "Ссылка повреждена или устарела. Откройте сайт и попробуйте ещё раз.",
		KeyUserNotFound:       "Пользователь не найден. Проверьте логин на сайте и попробуйте ещё раз.",
		KeyAlreadyConnected:   "Этот Telegram уже привязан к вашему аккаунту.",
		KeyLinkedOtherAccount: "Этот Telegram уже привязан к другому аккаунту. Один Telegram — один аккаунт.",
		KeyRegisterSuccess:    "Аккаунт успешно привязан! Теперь вы можете входить на сайт через Telegram.",
		KeyRegisterPending:    "Telegram привязан, но аккаунт ещё не подтверждён.\n\n1. Напишите администратору по кнопке ниже.\n2. Дождитесь подтверждения аккаунта.\n3. После подтверждения войдите на сайт через Telegram.",
		KeyGreeting:           "Здравствуйте, %s!",
		KeyCodeMessage:        "Ваш код для входа: <b>%s</b>\n\nКод действует 5 минут. Никому его не сообщайте.",
		KeyAuthMismatch:       "Этот аккаунт привязан к другому Telegram. Вход отклонён.",
		KeyBotBlocked:         "Бот @%s заблокирован у вас в Telegram. Разблокируйте его в настройках чата и повторите вход.",
		KeyAdminRequest:       "Здравствуйте! Прошу подтвердить аккаунт преподавателя: %s (логин %s).",
		KeyTryLater:           "Произошла ошибка. Попробуйте позже.",
		KeyBtnOpenSite:        "Открыть сайт",
		KeyBtnContactAdmin:    "Написать администратору",
	},
	"en": {
		KeyWelcome:            "Welcome! This bot links your Telegram to a teacher account and sends login codes.\n\nOpen the site and press \"Sign in with Telegram\" to begin.",
		KeyUnknownCommand:     "Unknown command. Use /start to begin.",
		KeyInvalidLink:        "The link is broken or outdated. Open the site and try again.",
		KeyUserNotFound:       "User not found. Check your login on the site and try again.",
		KeyAlreadyConnected:   "This Telegram is already linked to your account.",
		KeyLinkedOtherAccount: "This Telegram is already linked to another account. One Telegram — one account.",
		KeyRegisterSuccess:    "Account linked! You can now sign in to the site with Telegram.",
		KeyRegisterPending:    "Telegram linked, but the account is not confirmed yet.\n\n1. Message the administrator using the button below.\n2. Wait for the account to be confirmed.\n3. Then sign in to the site with Telegram.",
		KeyGreeting:           "Hello, %s!",
		KeyCodeMessage:        "Your login code: <b>%s</b>\n\nThe code is valid for 5 minutes. Do not share it with anyone.",
		KeyAuthMismatch:       "This account is linked to a different Telegram. Login rejected.",
		KeyBotBlocked:         "You have blocked @%s in Telegram. Unblock it in the chat settings and try again.",
		KeyAdminRequest:       "Hello! Please confirm the teacher account: %s (login %s).",
		KeyTryLater:           "Something went wrong. Please try again later.",
		KeyBtnOpenSite:        "Open the site",
		KeyBtnContactAdmin:    "Message the administrator",
	},
	"kg": {
		KeyWelcome:            "Кош келиңиз! Бул бот Telegram'ыңызды мугалимдин аккаунтуна байлап, кирүү коддорун жөнөтөт.\n\nБаштоо үчүн сайтты ачып, «Telegram аркылуу кирүү» баскычын басыңыз.",
		KeyUnknownCommand:     "Белгисиз команда. Баштоо үчүн /start колдонуңуз.",
		KeyInvalidLink:        "Шилтеме бузулган же эскирген. Сайтты ачып, кайра аракет кылыңыз.",
		KeyUserNotFound:       "Колдонуучу табылган жок. Сайттагы логинди текшерип, кайра аракет кылыңыз.",
		KeyAlreadyConnected:   "Бул Telegram сиздин аккаунтка мурунтан эле байланган.",
		KeyLinkedOtherAccount: "Бул Telegram башка аккаунтка байланган. Бир Telegram — бир аккаунт.",
		KeyRegisterSuccess:    "Аккаунт ийгиликтүү байланды! Эми сайтка Telegram аркылуу кире аласыз.",
		KeyRegisterPending:    "Telegram байланды, бирок аккаунт азырынча ырастала элек.\n\n1. Төмөнкү баскыч менен администраторго жазыңыз.\n2. Аккаунт ырасталганын күтүңүз.\n3. Андан кийин сайтка Telegram аркылуу кириңиз.",
		KeyGreeting:           "Саламатсызбы, %s!",
		KeyCodeMessage:        "Кирүү коду: <b>%s</b>\n\nКод 5 мүнөт жарактуу. Аны эч кимге айтпаңыз.",
		KeyAuthMismatch:       "Бул аккаунт башка Telegram'га байланган. Кирүү четке кагылды.",
		KeyBotBlocked:         "Сиз @%s ботун Telegram'да бөгөттөп койгонсуз. Чат жөндөөлөрүнөн бөгөттү алып, кайра аракет кылыңыз.",
		KeyAdminRequest:       "Саламатсызбы! Мугалимдин аккаунтун ырастап бериңиз: %s (логин %s).",
		KeyTryLater:           "Ката кетти. Кийинчерээк аракет кылыңыз.",
		KeyBtnOpenSite:        "Сайтты ачуу",
		KeyBtnContactAdmin:    "Администраторго жазуу",
	},
}
