package auth

import (
	"fmt"
	"strings"
)

// ShowCookieExtractionGuide displays step-by-step instructions for extracting cookies
func ShowCookieExtractionGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("📚 PINTEREST COOKIE EXTRACTION GUIDE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Println("This tool needs your Pinterest session cookies to search and read pins.")
	fmt.Println("Follow these steps to extract them from your browser:")
	fmt.Println()

	fmt.Println("🌐 STEP 1: Open Pinterest in your browser")
	fmt.Println("   - Go to https://www.pinterest.com")
	fmt.Println("   - Log in with your account")
	fmt.Println("   - Make sure you can see your home feed")
	fmt.Println()

	fmt.Println("🔧 STEP 2: Open Developer Tools")
	fmt.Println("   • Chrome/Edge/Brave: Press F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println("   • Firefox: Press F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println("   • Safari: Enable Developer menu in Preferences, then Cmd+Option+I")
	fmt.Println()

	fmt.Println("📡 STEP 3: Go to the Network tab")
	fmt.Println("   - Click on the 'Network' tab in Developer Tools")
	fmt.Println("   - If it's empty, refresh the page (F5)")
	fmt.Println()

	fmt.Println("🍪 STEP 4: Find your cookies")
	fmt.Println("   METHOD A - From Network tab:")
	fmt.Println("   1. Look for any request to 'pinterest.com'")
	fmt.Println("   2. Click on it")
	fmt.Println("   3. Go to 'Headers' section")
	fmt.Println("   4. Scroll to 'Request Headers'")
	fmt.Println("   5. Find the 'Cookie:' line")
	fmt.Println()
	fmt.Println("   METHOD B - From Application/Storage tab:")
	fmt.Println("   1. Go to 'Application' tab (Chrome) or 'Storage' tab (Firefox)")
	fmt.Println("   2. In the left sidebar, expand 'Cookies'")
	fmt.Println("   3. Click on 'https://www.pinterest.com'")
	fmt.Println("   4. Look for these cookies in the list:")
	fmt.Println()

	fmt.Println("🔑 STEP 5: Copy these specific values:")
	fmt.Println("   ┌─────────────────┬──────────────────────────────────────────────┐")
	fmt.Println("   │ Cookie Name     │ What it looks like                           │")
	fmt.Println("   ├─────────────────┼──────────────────────────────────────────────┤")
	fmt.Println("   │ _pinterest_sess │ Very long base64-like string                 │")
	fmt.Println("   ├─────────────────┼──────────────────────────────────────────────┤")
	fmt.Println("   │ csrftoken       │ 32-character string                          │")
	fmt.Println("   └─────────────────┴──────────────────────────────────────────────┘")
	fmt.Println()

	fmt.Println("💡 TIPS:")
	fmt.Println("   • Copy the ENTIRE value (everything after the = sign)")
	fmt.Println("   • Don't include quotes or semicolons")
	fmt.Println("   • A cookie-export browser extension can save the whole jar as JSON,")
	fmt.Println("     which you can import with 'pinscraper auth import <file>'")
	fmt.Println("   • These cookies expire, so you may need to refresh them periodically")
	fmt.Println()

	fmt.Println("⚠️  SECURITY WARNING:")
	fmt.Println("   • These cookies give FULL access to your Pinterest account")
	fmt.Println("   • NEVER share them with anyone")
	fmt.Println("   • Store them securely (this tool encrypts them)")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

// ShowQuickExtractGuide shows a condensed version for experienced users
func ShowQuickExtractGuide() {
	fmt.Println("\n🍪 Quick Guide: F12 → Network tab → Refresh → Click any pinterest.com request → Headers → Cookie")
	fmt.Println("   Need: _pinterest_sess=... and csrftoken=...")
	fmt.Println("   Type 'help' for detailed instructions")
}
