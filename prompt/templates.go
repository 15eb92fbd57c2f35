package prompt

const rules = `- در صورت عدم اطلاع از یک مقدار، به جای حذف فیلد مقدار "نامشخص" یا null قرار دهید
- هیچ فیلدی را بدون مقدار حذف نکنید
- پاسخ را فقط به صورت JSON خالص برگردانید، بدون هیچ متن یا توضیح اضافه قبل یا بعد از JSON`

const lookupTemplate = `شما یک متخصص داروسازی و اطلاعات دارویی هستید. اطلاعات کامل و دقیق درباره داروی "%s" را به زبان %s ارائه دهید.

خروجی باید دقیقاً یک شیء JSON با ساختار زیر باشد:

%s

نکات مهم:
- تمام اطلاعات باید دقیق و علمی و بر اساس منابع معتبر دارویی باشند
- عوارض جانبی را به ترتیب اهمیت و شیوع فهرست کنید
%s`

const lookupSchema = `{
  "name": "نام فارسی دارو",
  "englishName": "نام انگلیسی دارو",
  "category": "دسته‌بندی اصلی",
  "subCategory": "زیردسته‌بندی",
  "dosage": "دوز و شکل دارو (مثال: قرص 500mg)",
  "type": "نوع مصرف (خوراکی، تزریقی، موضعی و ...)",
  "form": "شکل دارو (قرص، کپسول، شربت و ...)",
  "usage": "کاربرد اصلی دارو",
  "description": "توضیحات کامل درباره دارو",
  "sideEffects": ["عارضه جانبی 1", "عارضه جانبی 2"],
  "seriousSideEffects": ["عارضه جدی 1", "عارضه جدی 2"],
  "warnings": "هشدارها و نکات مهم",
  "pregnancy": "گروه بارداری (A, B, C, D, X)",
  "interactions": ["تداخل دارویی 1", "تداخل دارویی 2"],
  "storage": "شرایط نگهداری",
  "manufacturer": "سازنده دارو",
  "tags": ["تگ 1", "تگ 2"]
}`

const categoriesTemplate = `شما یک متخصص داروسازی هستید. لیست کامل دسته‌بندی‌های اصلی داروهای ایران را به زبان %s ارائه دهید.

خروجی باید دقیقاً یک شیء JSON با ساختار زیر باشد:

%s

نکات مهم:
- دسته‌بندی‌های اصلی (آنتی‌بیوتیک، مسکن، گوارشی، قلبی، دیابت، اعصاب، آلرژی، هورمون و ...) را شامل شود
- شناسه (id) هر دسته یک عدد صحیح مثبت و یکتا باشد
- برای هر دسته، زیردسته‌های مهم را فهرست کنید
- تعداد تقریبی داروها را به صورت عدد صحیح ارائه دهید
%s`

const categoriesSchema = `{
  "categories": [
    {
      "id": 1,
      "name": "نام دسته‌بندی",
      "count": 120,
      "color": "کلاس رنگ برای UI (مثال: from-blue-500 to-blue-600)",
      "icon": "ایموجی مناسب",
      "sub": ["زیردسته 1", "زیردسته 2"]
    }
  ],
  "stats": {
    "totalDrugs": 0,
    "totalCategories": 0,
    "totalSubCategories": 0,
    "totalManufacturers": 0
  }
}`

const searchTemplate = `شما یک متخصص داروسازی هستید. داروهای مرتبط با عبارت "%s" را به زبان %s جستجو و فهرست کنید.

خروجی باید دقیقاً یک شیء JSON با ساختار زیر باشد:

%s

نکات مهم:
- حداکثر %d نتیجه برگردانید و آرایه drugs را به همین تعداد محدود کنید
- نتایج را بر اساس مرتبط‌ترین به عبارت جستجو مرتب کنید
- total تعداد کل نتایج مرتبط به صورت عدد صحیح است
- در صورت عدم یافتن نتیجه، آرایه خالی برگردانید
%s`

const searchSchema = `{
  "drugs": [
    {
      "id": 1,
      "name": "نام فارسی دارو",
      "englishName": "نام انگلیسی",
      "category": "دسته‌بندی",
      "subCategory": "زیردسته",
      "dosage": "دوز",
      "form": "شکل دارو",
      "usage": "کاربرد",
      "manufacturer": "سازنده",
      "price": "قیمت تقریبی"
    }
  ],
  "total": 0,
  "query": "%s"
}`
